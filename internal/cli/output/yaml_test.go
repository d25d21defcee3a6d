package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintYAML(t *testing.T) {
	data := struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	}{Host: "127.0.0.1", Port: 9052}

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, data))

	assert.Contains(t, buf.String(), "host: 127.0.0.1")
	assert.Contains(t, buf.String(), "port: 9052")
}

func TestPrintYAMLSequence(t *testing.T) {
	data := []map[string]string{
		{"table_name": "users"},
		{"table_name": "sessions"},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, data))

	assert.Contains(t, buf.String(), "- table_name: users")
	assert.Contains(t, buf.String(), "- table_name: sessions")
}
