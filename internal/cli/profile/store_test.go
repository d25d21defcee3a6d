package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileAddr(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		expected string
	}{
		{
			name:     "explicit port",
			profile:  Profile{Host: "db.example.com", Port: 9999},
			expected: "db.example.com:9999",
		},
		{
			name:     "default port",
			profile:  Profile{Host: "127.0.0.1"},
			expected: "127.0.0.1:9052",
		},
		{
			name:     "ipv6 host",
			profile:  Profile{Host: "::1", Port: 9052},
			expected: "[::1]:9052",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.profile.Addr())
		})
	}
}

func TestStoreOperations(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	store, err := NewStore()
	require.NoError(t, err)
	assert.NotNil(t, store)

	// Verify config file location
	expectedPath := filepath.Join(tmpDir, DefaultConfigDir, ConfigFileName)
	assert.Equal(t, expectedPath, store.ConfigPath())

	// Test empty state
	_, err = store.GetCurrent()
	assert.ErrorIs(t, err, ErrNoCurrentProfile)
	assert.Empty(t, store.List())

	// The first saved profile becomes current
	local := &Profile{Host: "127.0.0.1", Port: 9052, Username: "colonnade"}
	err = store.Set("local", local)
	require.NoError(t, err)
	assert.Equal(t, "local", store.GetCurrentName())

	current, err := store.GetCurrent()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", current.Host)
	assert.Equal(t, "colonnade", current.Username)

	// Add another profile; current stays put
	err = store.Set("production", &Profile{Host: "db.example.com", Consistency: "QUORUM"})
	require.NoError(t, err)
	assert.Equal(t, "local", store.GetCurrentName())

	// List is sorted
	assert.Equal(t, []string{"local", "production"}, store.List())

	// Switch profile
	err = store.Use("production")
	require.NoError(t, err)
	assert.Equal(t, "production", store.GetCurrentName())

	// Rename follows the current selection
	err = store.Rename("production", "prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", store.GetCurrentName())

	// Delete clears the current selection
	err = store.Delete("prod")
	require.NoError(t, err)
	assert.Empty(t, store.GetCurrentName())

	_, err = store.Get("nonexistent")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	err = store.Use("nonexistent")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestStorePersistence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	store, err := NewStore()
	require.NoError(t, err)

	err = store.Set("local", &Profile{Host: "localhost", Port: 9052, Output: "json"})
	require.NoError(t, err)

	// A fresh store sees what the first one saved
	reloaded, err := NewStore()
	require.NoError(t, err)

	p, err := reloaded.Get("local")
	require.NoError(t, err)
	assert.Equal(t, "localhost", p.Host)
	assert.Equal(t, 9052, p.Port)
	assert.Equal(t, "json", p.Output)
	assert.Equal(t, "local", reloaded.GetCurrentName())

	// Config file is owner-only
	info, err := os.Stat(reloaded.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())
}
