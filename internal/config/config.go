package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig reports that no config file was found at the searched
// location.
var ErrNoConfig = errors.New("no config file")

// FileConfig is the on-disk YAML configuration shape for camel-leaked.
// Pointer fields distinguish "unset" from zero values so that local files can
// override global ones field by field.
type FileConfig struct {
	Rules           *string  `yaml:"rules"`
	MinEntropy      *float64 `yaml:"min_entropy"`
	MinLength       *int     `yaml:"min_length"`
	NoEntropy       *bool    `yaml:"no_entropy"`
	Include         *string  `yaml:"include"`
	Exclude         *string  `yaml:"exclude"`
	MaxBytes        *int64   `yaml:"max_bytes"`
	DefaultExcludes *bool    `yaml:"default_excludes"`
	NoColor         *bool    `yaml:"no_color"`
	LogLevel        *string  `yaml:"log_level"`
	LogFile         *string  `yaml:"log_file"`
	Baseline        *string  `yaml:"baseline"`

	Notify *NotifyConfig `yaml:"notify"`
}

// NotifyConfig lists downstream webhook recipients for findings.
type NotifyConfig struct {
	Webhooks []string `yaml:"webhooks"`
	Token    *string  `yaml:"token"`
}

// LoadFile reads a YAML config file from the provided path. Unknown keys are
// rejected so that typos do not silently disable settings.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LocalNames are the repo-local config file names in lookup order.
var LocalNames = []string{".camel-leaked.yml", ".camel-leaked.yaml", "camel-leaked.yml", "camel-leaked.yaml"}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNoConfig
}

// GlobalPath returns $XDG_CONFIG_HOME/camel-leaked/config.yml, falling back
// to ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "camel-leaked", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNoConfig
	}
	return LoadFile(p)
}

// Webhooks returns the configured webhook URLs, trimmed and without blanks.
func (fc FileConfig) Webhooks() []string {
	if fc.Notify == nil {
		return nil
	}
	var out []string
	for _, u := range fc.Notify.Webhooks {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// NotifyToken returns the bearer token for webhooks or "".
func (fc FileConfig) NotifyToken() string {
	if fc.Notify == nil || fc.Notify.Token == nil {
		return ""
	}
	return *fc.Notify.Token
}

// Template is written by `camel-leaked config init`.
const Template = `# camel-leaked configuration
# Rules file (YAML or TOML). Built-in rules are used when unset.
# rules: .camel-leaked-rules.yaml

# Entropy detector
min_entropy: 4.5
min_length: 20
no_entropy: false

# Comma-separated globs
include: ""
exclude: ""
max_bytes: 1048576
default_excludes: true

no_color: false
log_level: warn
# log_file: /tmp/camel-leaked.log

# Known findings that should not fail the build
baseline: camel-leaked.baseline.json

notify:
  webhooks: []
  # token: ""
`
