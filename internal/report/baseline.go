package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/camel-leaked/camel-leaked/internal/types"
)

// Baseline is a set of accepted findings keyed by file, rule and content,
// so that moving a known secret to another line does not fail a build.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline file. A missing file is an empty baseline.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return b, nil
		}
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline writes a baseline accepting every finding given.
func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range findings {
		b.Add(f)
	}
	return b.Save(path)
}

func (b *Baseline) Add(f types.Finding) {
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	b.Items[f.Key()] = true
}

func (b Baseline) Contains(f types.Finding) bool { return b.Items[f.Key()] }

func (b Baseline) Save(path string) error {
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// FilterNewFindings drops findings present in base, keeping order.
func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	out := make([]types.Finding, 0, len(findings))
	for _, f := range findings {
		if !base.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Exit codes of the scan commands.
const (
	ExitClean    = 0
	ExitFindings = 1
	ExitError    = 2
)

// ExitCode maps a findings list to the process verdict.
func ExitCode(findings []types.Finding) int {
	if len(findings) > 0 {
		return ExitFindings
	}
	return ExitClean
}
