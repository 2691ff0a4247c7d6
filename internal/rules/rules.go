package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/camel-leaked/camel-leaked/internal/types"
	"gopkg.in/yaml.v3"
)

// Rule is a named, compiled detection pattern. Rules are immutable once
// stored in a Set.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
	Example     string
	Severity    types.Severity
}

// Spec is a rule as written by a user: either one entry of a rule document
// or the arguments of Set.Add. A nil Enabled means enabled.
type Spec struct {
	Name        string
	Pattern     string
	Description string
	Example     string
	Enabled     *bool
	Severity    string
}

func (s Spec) enabled() bool { return s.Enabled == nil || *s.Enabled }

// Set holds the enabled rules in load order. It is written during Load and
// Add and read by scans afterwards; callers must not mutate it while a scan
// is running.
type Set struct {
	rules []Rule
}

// NewSet returns an empty rule set.
func NewSet() *Set { return &Set{} }

// Load parses and validates a rule document and replaces the set's rules
// with its enabled entries. It returns the number of rules loaded. On error
// the set keeps its previous contents.
func (s *Set) Load(src []byte) (int, error) {
	doc, err := decodeYAML(src)
	if err != nil {
		return 0, err
	}
	return s.loadDocument(doc)
}

func (s *Set) loadDocument(doc map[string]any) (int, error) {
	loaded, err := compileDocument(doc)
	if err != nil {
		return 0, err
	}
	s.rules = loaded
	return len(loaded), nil
}

// Validate runs the Load checks against src without touching any set.
func Validate(src []byte) error {
	doc, err := decodeYAML(src)
	if err != nil {
		return err
	}
	_, err = compileDocument(doc)
	return err
}

// Add validates a single rule and appends it. A rule with Enabled set to
// false is validated but not stored. Add does not require the set to keep
// at least one rule.
func (s *Set) Add(spec Spec) error {
	r, err := compile(0, spec)
	if err != nil {
		return err
	}
	if spec.enabled() {
		s.rules = append(s.rules, r)
	}
	return nil
}

// Rules returns a copy of the enabled rules in load order.
func (s *Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Find returns the first rule with the given name.
func (s *Set) Find(name string) (Rule, bool) {
	for _, r := range s.rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Count returns the number of enabled rules.
func (s *Set) Count() int { return len(s.rules) }

// Names returns rule names in load order.
func (s *Set) Names() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Name
	}
	return out
}

func decodeYAML(src []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &ConfigFormatError{Reason: "not a structured document", Err: err}
	}
	return doc, nil
}

func compileDocument(doc map[string]any) ([]Rule, error) {
	raw, ok := doc["rules"]
	if !ok {
		return nil, &ConfigFormatError{Reason: `missing "rules" field`}
	}
	entries, ok := asSequence(raw)
	if !ok {
		return nil, &ConfigFormatError{Reason: `"rules" must be a sequence`}
	}
	var out []Rule
	for i, entry := range entries {
		spec, err := specFromEntry(i, entry)
		if err != nil {
			return nil, err
		}
		r, err := compile(i, spec)
		if err != nil {
			return nil, err
		}
		if spec.enabled() {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRules
	}
	return out, nil
}

func compile(i int, spec Spec) (Rule, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return Rule{}, &ConfigFieldError{Index: i, Field: "name", Reason: "is required"}
	}
	if spec.Pattern == "" {
		return Rule{}, &ConfigFieldError{Index: i, Field: "pattern", Reason: "is required"}
	}
	sev, ok := types.ParseSeverity(strings.ToLower(strings.TrimSpace(spec.Severity)))
	if !ok {
		return Rule{}, &ConfigFieldError{Index: i, Field: "severity", Reason: "must be one of low, medium, high"}
	}
	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return Rule{}, &PatternCompileError{Index: i, Pattern: spec.Pattern, Err: err}
	}
	return Rule{
		Name:        spec.Name,
		Pattern:     re,
		Description: spec.Description,
		Example:     spec.Example,
		Severity:    sev,
	}, nil
}

func specFromEntry(i int, entry any) (Spec, error) {
	m, ok := asMapping(entry)
	if !ok {
		return Spec{}, &ConfigFieldError{Index: i, Reason: "entry must be a mapping"}
	}
	var (
		spec Spec
		err  error
	)
	if spec.Name, err = textField(i, m, "name"); err != nil {
		return Spec{}, err
	}
	if spec.Pattern, err = textField(i, m, "pattern"); err != nil {
		return Spec{}, err
	}
	if spec.Description, err = textField(i, m, "description"); err != nil {
		return Spec{}, err
	}
	if spec.Example, err = textField(i, m, "example"); err != nil {
		return Spec{}, err
	}
	if spec.Severity, err = textField(i, m, "severity"); err != nil {
		return Spec{}, err
	}
	if v, ok := m["enabled"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return Spec{}, &ConfigFieldError{Index: i, Field: "enabled", Reason: "must be a boolean"}
		}
		spec.Enabled = &b
	}
	return spec, nil
}

// textField returns a scalar field as text; absent and null fields are "".
func textField(i int, m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t), nil
	}
	return "", &ConfigFieldError{Index: i, Field: key, Reason: "must be a string"}
}

func asSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []map[string]any:
		// TOML arrays of tables decode to a typed slice.
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}

func asMapping(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}
