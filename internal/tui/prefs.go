package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Prefs holds review preferences that persist across sessions.
type Prefs struct {
	// HideSecrets masks matched content in the table and detail pane.
	HideSecrets bool `json:"hide_secrets"`
	// ContextHighlight turns on syntax colouring of the offending line.
	ContextHighlight bool `json:"context_highlight"`
}

func DefaultPrefs() Prefs {
	return Prefs{HideSecrets: true, ContextHighlight: true}
}

func prefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".camel-leaked", "review_prefs.json"), nil
}

// LoadPrefs returns the saved preferences, or the defaults when none can
// be read.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	return prefs
}

func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// redactSecret keeps a short prefix so the secret's kind stays visible.
// Six characters or fewer are hidden entirely.
func redactSecret(s string) string {
	r := []rune(s)
	if len(r) <= 6 {
		return "..."
	}
	return string(r[:6]) + "..."
}
