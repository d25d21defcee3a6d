// Package profile provides named connection profiles for colsh.
//
// A profile stores where and how to connect: host, port, username, and
// rendering preferences. Passwords are never persisted; colsh prompts when
// the server demands one.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/colonnadedb/colonnade/pkg/protocol/native"
)

const (
	// DefaultConfigDir is the default directory for colsh configuration.
	DefaultConfigDir = "colsh"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.json"
	// FilePermissions for config files (read/write for owner only).
	FilePermissions = 0600
	// DirPermissions for config directories.
	DirPermissions = 0700
)

var (
	// ErrNoCurrentProfile indicates no profile is currently selected.
	ErrNoCurrentProfile = errors.New("no current profile set")
	// ErrProfileNotFound indicates the requested profile doesn't exist.
	ErrProfileNotFound = errors.New("profile not found")
)

// Profile describes how to reach one Colonnade node.
type Profile struct {
	Host        string `json:"host"`
	Port        int    `json:"port,omitempty"`
	Username    string `json:"username,omitempty"`
	Consistency string `json:"consistency,omitempty"`
	Output      string `json:"output,omitempty"`
}

// Addr returns the host:port dial address, falling back to the native
// protocol default port when the profile leaves it unset.
func (p *Profile) Addr() string {
	port := p.Port
	if port == 0 {
		port = native.DefaultPort
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(port))
}

// Config represents the complete colsh configuration.
type Config struct {
	CurrentProfile string              `json:"current_profile"`
	Profiles       map[string]*Profile `json:"profiles"`
}

// Store manages profile storage and retrieval.
type Store struct {
	configPath string
	config     *Config
}

// NewStore creates a new profile store, loading any existing configuration.
func NewStore() (*Store, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	store := &Store{
		configPath: configPath,
	}

	if err := store.load(); err != nil {
		// If file doesn't exist, start with an empty config
		if os.IsNotExist(err) {
			store.config = &Config{
				Profiles: make(map[string]*Profile),
			}
		} else {
			return nil, err
		}
	}

	return store, nil
}

// getConfigPath returns the path to the config file.
func getConfigPath() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise ~/.config
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, DefaultConfigDir, ConfigFileName), nil
}

// load reads the config from disk.
func (s *Store) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}

	s.config = &Config{}
	return json.Unmarshal(data, s.config)
}

// save writes the config to disk.
func (s *Store) save() error {
	dir := filepath.Dir(s.configPath)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configPath, data, FilePermissions)
}

// GetCurrent returns the currently selected profile.
func (s *Store) GetCurrent() (*Profile, error) {
	if s.config.CurrentProfile == "" {
		return nil, ErrNoCurrentProfile
	}

	p, ok := s.config.Profiles[s.config.CurrentProfile]
	if !ok {
		return nil, ErrProfileNotFound
	}

	return p, nil
}

// GetCurrentName returns the name of the currently selected profile.
func (s *Store) GetCurrentName() string {
	return s.config.CurrentProfile
}

// Get returns a specific profile by name.
func (s *Store) Get(name string) (*Profile, error) {
	p, ok := s.config.Profiles[name]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// List returns all profile names in sorted order.
func (s *Store) List() []string {
	names := make([]string, 0, len(s.config.Profiles))
	for name := range s.config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set creates or updates a profile. The first profile saved becomes the
// current one.
func (s *Store) Set(name string, p *Profile) error {
	if s.config.Profiles == nil {
		s.config.Profiles = make(map[string]*Profile)
	}
	s.config.Profiles[name] = p
	if s.config.CurrentProfile == "" {
		s.config.CurrentProfile = name
	}
	return s.save()
}

// Use switches to a different profile.
func (s *Store) Use(name string) error {
	if _, ok := s.config.Profiles[name]; !ok {
		return ErrProfileNotFound
	}
	s.config.CurrentProfile = name
	return s.save()
}

// Rename renames a profile.
func (s *Store) Rename(oldName, newName string) error {
	p, ok := s.config.Profiles[oldName]
	if !ok {
		return ErrProfileNotFound
	}

	delete(s.config.Profiles, oldName)
	s.config.Profiles[newName] = p

	if s.config.CurrentProfile == oldName {
		s.config.CurrentProfile = newName
	}

	return s.save()
}

// Delete removes a profile.
func (s *Store) Delete(name string) error {
	if _, ok := s.config.Profiles[name]; !ok {
		return ErrProfileNotFound
	}

	delete(s.config.Profiles, name)

	if s.config.CurrentProfile == name {
		s.config.CurrentProfile = ""
	}

	return s.save()
}

// ConfigPath returns the path to the config file.
func (s *Store) ConfigPath() string {
	return s.configPath
}
