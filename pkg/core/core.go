package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/camel-leaked/camel-leaked/internal/detectors"
	"github.com/camel-leaked/camel-leaked/internal/engine"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/rules"
	"github.com/camel-leaked/camel-leaked/internal/types"
)

// Re-exported so that callers depend on a stable import path only.
type (
	Finding  = types.Finding
	Severity = types.Severity
)

// HighEntropyRule is the RuleName of entropy-sourced findings.
const HighEntropyRule = types.HighEntropyRule

// Options configures a Scanner. The zero value scans with the built-in
// rules and the default entropy thresholds.
type Options struct {
	// RulesFile is a YAML, JSON or TOML rule document. Empty selects the
	// built-in rules.
	RulesFile string
	// Rules is an in-memory rule document; it takes precedence over
	// RulesFile.
	Rules []byte

	// MinEntropy and MinLength override the entropy thresholds when set.
	// A MinEntropy of 0 reports every candidate that is not benign.
	MinEntropy *float64
	MinLength  *int
	NoEntropy  bool
}

func (o Options) entropy() detectors.EntropyConfig {
	cfg := detectors.DefaultEntropyConfig()
	if o.MinEntropy != nil {
		cfg.MinEntropy = *o.MinEntropy
	}
	if o.MinLength != nil {
		cfg.MinLength = *o.MinLength
	}
	return cfg
}

// Scanner detects secrets in diffs and plain content.
type Scanner struct {
	eng *engine.Engine
}

func NewScanner(opts Options) (*Scanner, error) {
	set, err := loadRules(opts)
	if err != nil {
		return nil, err
	}
	eopt := engine.WithEntropy(opts.entropy())
	if opts.NoEntropy {
		eopt = engine.WithoutEntropy()
	}
	return &Scanner{eng: engine.New(set, eopt)}, nil
}

func loadRules(opts Options) (*rules.Set, error) {
	switch {
	case len(opts.Rules) > 0:
		set := rules.NewSet()
		if _, err := set.Load(opts.Rules); err != nil {
			return nil, err
		}
		return set, nil
	case opts.RulesFile != "":
		return rules.LoadFile(opts.RulesFile)
	default:
		return rules.Default(), nil
	}
}

// ScanDiff reports secrets on the added lines of a unified diff.
func (s *Scanner) ScanDiff(text string) []Finding { return s.eng.ScanDiff(text) }

// ScanContent reports secrets anywhere in text, attributed to filename.
func (s *Scanner) ScanContent(text, filename string) []Finding {
	return s.eng.ScanContent(text, filename)
}

// RuleNames lists the scanner's rules in load order.
func (s *Scanner) RuleNames() []string {
	rs := s.eng.Rules()
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

// ValidateRules checks a rule document without loading it anywhere.
func ValidateRules(src []byte) error { return rules.Validate(src) }

// DefaultRules returns the built-in rule document.
func DefaultRules() []byte { return rules.DefaultSource() }

// WriteJSON writes findings in the same JSON shape as `camel-leaked scan
// --json`. A nil slice is written as [].
func WriteJSON(w io.Writer, findings []Finding) error {
	return report.WriteJSON(w, findings)
}

// ReadJSON decodes the output of WriteJSON. Unknown fields are rejected so
// that a SARIF document or another tool's report is not silently read as
// empty findings.
func ReadJSON(r io.Reader) ([]Finding, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var fs []Finding
	if err := dec.Decode(&fs); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return fs, nil
}
