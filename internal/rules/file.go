package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFile reads a rule document from disk into a new set. Files ending in
// .toml are decoded as TOML ([[rules]] tables); anything else as YAML, which
// also covers JSON.
func LoadFile(path string) (*Set, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	s := NewSet()
	if _, err := s.loadDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ValidateFile runs Validate against a rule file.
func ValidateFile(path string) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if _, err := compileDocument(doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func readDocument(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var doc map[string]any
		if err := toml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, &ConfigFormatError{Reason: "not a structured document", Err: err})
		}
		return doc, nil
	}
	doc, err := decodeYAML(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
