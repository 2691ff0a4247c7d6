package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/types"
)

// ScanResults is the last scan's output, kept for `camel-leaked review`.
type ScanResults struct {
	Findings  []types.Finding `json:"findings"`
	Timestamp time.Time       `json:"timestamp"`
	Root      string          `json:"root"`
	Source    string          `json:"source"` // diff, stdin, staged, base, history or files
	Count     int             `json:"count"`
}

func resultsPath(root string) string {
	dir := stateDir(root)
	if dir == root {
		return filepath.Join(root, ".camel-leaked-last-scan.json")
	}
	return filepath.Join(dir, "camel-leaked-last-scan.json")
}

// SaveResults stores findings from the scan of root. The file holds
// secrets verbatim and is readable by the owner only.
func SaveResults(root, source string, findings []types.Finding) error {
	results := ScanResults{
		Findings:  findings,
		Timestamp: time.Now(),
		Root:      root,
		Source:    source,
		Count:     len(findings),
	}
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultsPath(root), b, 0o600)
}

// LoadResults returns the last stored scan for root.
func LoadResults(root string) (ScanResults, error) {
	var results ScanResults
	f, err := os.ReadFile(resultsPath(root))
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(f, &results); err != nil {
		return results, err
	}
	return results, nil
}
