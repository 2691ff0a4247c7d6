package rules

import (
	"errors"
	"fmt"
)

// ErrNoRules is returned by Load and Validate when no enabled rule survives
// filtering. A rule set must never silently run with no detections.
var ErrNoRules = errors.New("rule config contains no enabled rules")

// ConfigFormatError reports a document that is not a structured object with
// a "rules" sequence.
type ConfigFormatError struct {
	Reason string
	Err    error
}

func (e *ConfigFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid rule config: %s: %v", e.Reason, e.Err)
	}
	return "invalid rule config: " + e.Reason
}

func (e *ConfigFormatError) Unwrap() error { return e.Err }

// ConfigFieldError reports a rule entry with a missing, empty or mistyped
// field. Index is the 0-based position of the entry in the rules sequence.
type ConfigFieldError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ConfigFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("rule %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("rule %d: field %q %s", e.Index, e.Field, e.Reason)
}

// PatternCompileError reports a rule whose pattern is not a valid regular
// expression. It unwraps to the compiler error.
type PatternCompileError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("rule %d: invalid pattern %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }
