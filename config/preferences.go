package config

import (
	"os"
	"path/filepath"

	"github.com/go-playground/errors/v5"
	"gopkg.in/yaml.v3"
)

// Preferences are per-user display settings, stored next to the
// configuration file.
type Preferences struct {
	BaseCurrency  string `yaml:"baseCurrency"`
	Language      string `yaml:"language"`
	DarkMode      bool   `yaml:"darkMode"`
	Notifications bool   `yaml:"notifications"`
}

// DefaultPreferences returns the initial settings for a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{
		BaseCurrency:  "PEN",
		Language:      "es",
		Notifications: true,
	}
}

// PreferencesPath returns the preferences file location under the user's
// config directory.
func PreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "fxadmin", "preferences.yaml")
}

// LoadPreferences reads the preferences at path, falling back to the
// defaults when the file does not exist.
func LoadPreferences(path string) (Preferences, error) {
	prefs := DefaultPreferences()

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return prefs, nil
	case err != nil:
		return prefs, errors.Wrap(err, "os.ReadFile()")
	}

	if err := yaml.Unmarshal(raw, &prefs); err != nil {
		return prefs, errors.Wrap(err, "yaml.Unmarshal()")
	}

	return prefs, nil
}

// SavePreferences writes the preferences to path, creating the directory
// when needed.
func SavePreferences(path string, prefs Preferences) error {
	raw, err := yaml.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "yaml.Marshal()")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "os.MkdirAll()")
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return errors.Wrap(err, "os.WriteFile()")
	}

	return nil
}
