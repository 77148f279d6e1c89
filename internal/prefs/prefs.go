// Package prefs persists khidmat's per-user interface preferences.
// Preferences are stored in ~/.config/khidmat/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/khidmat-portal/khidmat/internal/config"
)

// Prefs holds user preferences that survive restarts.
type Prefs struct {
	Theme     string         `toml:"theme"`
	LastView  string         `toml:"last_view,omitempty"`
	PageSizes map[string]int `toml:"page_sizes,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/khidmat/prefs.toml"
	defaultTheme     = "Portal"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{Theme: defaultTheme}
}

// PageSize returns the stored page size for entity, or fallback.
func (p Prefs) PageSize(entity string, fallback int) int {
	if n, ok := p.PageSizes[entity]; ok && n > 0 {
		return n
	}
	return fallback
}

// WithPageSize returns a copy of p with entity's page size set.
func (p Prefs) WithPageSize(entity string, size int) Prefs {
	sizes := make(map[string]int, len(p.PageSizes)+1)
	maps.Copy(sizes, p.PageSizes)
	if size > 0 {
		sizes[entity] = size
	} else {
		delete(sizes, entity)
	}
	p.PageSizes = sizes
	return p
}

// Load reads preferences from path. Any problem yields defaults; a broken
// prefs file must never keep the UI from starting.
func Load(path string) Prefs {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		return prefs
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default()
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	for entity, size := range prefs.PageSizes {
		if size <= 0 {
			delete(prefs.PageSizes, entity)
		}
	}
	return prefs
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return "", errors.Join(fmt.Errorf("prefs path %q", path), err)
	}
	return resolved, nil
}
