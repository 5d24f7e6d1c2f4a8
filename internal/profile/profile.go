// Package profile handles the CLI's profile.toml.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/shubh-37/decluttr/internal/models"
)

// Profile identifies the CLI user and where their data lives.
type Profile struct {
	// UserID is the opaque key records are stored under.
	UserID string `toml:"user-id"`
	// BackendURL is the REST backend the CLI syncs with.
	BackendURL string `toml:"backend-url,omitempty"`
	// Store, when set, is a database URL used directly instead of the
	// backend, e.g. "sqlite:///home/me/decluttr.db".
	Store string `toml:"store,omitempty"`
}

// DefaultPath returns $XDG_CONFIG_HOME/decluttr/profile.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		base = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(base, "decluttr", "profile.toml"), nil
}

// Load reads the profile at path. A missing file yields an empty profile.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p Profile
	if _, err := toml.Decode(string(data), &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	p.UserID = strings.TrimSpace(p.UserID)
	p.BackendURL = strings.TrimSpace(p.BackendURL)
	p.Store = strings.TrimSpace(p.Store)
	return &p, nil
}

// Save writes p to path, creating the directory if needed
func Save(path string, p *Profile) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write profile %s: %w", path, err)
	}
	return nil
}

// LoadOrCreate loads the profile and mints a guest id when it has none.
// created reports whether the file was written.
func LoadOrCreate(path string) (p *Profile, created bool, err error) {
	p, err = Load(path)
	if err != nil {
		return nil, false, err
	}
	if p.UserID != "" {
		return p, false, nil
	}

	p.UserID = models.NewGuestID()
	if err := Save(path, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}
