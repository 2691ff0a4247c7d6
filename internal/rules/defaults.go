package rules

import _ "embed"

//go:embed default_rules.yaml
var defaultRules []byte

// DefaultSource returns the built-in rule document.
func DefaultSource() []byte {
	out := make([]byte, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Default returns a new set holding the built-in rules.
func Default() *Set {
	s := NewSet()
	if _, err := s.Load(defaultRules); err != nil {
		panic("rules: built-in rule set is invalid: " + err.Error())
	}
	return s
}
