// Package audit appends one JSON record per scan run to a local log.
// Matched secrets never reach the log.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/google/uuid"
)

const redacted = "[REDACTED]"

type ScanRecord struct {
	Timestamp      time.Time        `json:"timestamp"`
	ScanID         string           `json:"scan_id"`
	Root           string           `json:"root"`
	Source         string           `json:"source"`
	TotalFindings  int              `json:"total_findings"`
	NewFindings    int              `json:"new_findings"`
	BaselinedCount int              `json:"baselined_count"`
	SeverityCounts map[string]int   `json:"severity_counts"`
	FilesScanned   int              `json:"files_scanned,omitempty"`
	Duration       string           `json:"duration"`
	BaselineFile   string           `json:"baseline_file,omitempty"`
	TopFindings    []FindingSummary `json:"top_findings,omitempty"`
	AllFindings    []types.Finding  `json:"all_findings,omitempty"`
}

type FindingSummary struct {
	File     string `json:"file"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Line     int    `json:"line"`
}

type Log struct {
	path string
}

// New returns the audit log for root. Inside a git work tree the log lives
// under .git so it is never committed.
func New(root string) *Log {
	p := filepath.Join(root, ".camel-leaked-audit.jsonl")
	if st, err := os.Stat(filepath.Join(root, ".git")); err == nil && st.IsDir() {
		p = filepath.Join(root, ".git", "camel-leaked-audit.jsonl")
	}
	return &Log{path: p}
}

func (a *Log) Path() string { return a.path }

// History returns recorded scans, newest first. A missing log is empty.
// Lines that fail to decode are skipped.
func (a *Log) History() ([]ScanRecord, error) {
	f, err := os.Open(a.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var r ScanRecord
		if err := dec.Decode(&r); err != nil {
			break
		}
		records = append(records, r)
	}
	slices.Reverse(records)
	return records, nil
}

// Append writes record, assigning a scan id when it has none.
func (a *Log) Append(record ScanRecord) (string, error) {
	if record.ScanID == "" {
		record.ScanID = uuid.NewString()
	}
	// owner-only: records carry file paths and rule names
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(record); err != nil {
		return "", fmt.Errorf("write audit record: %w", err)
	}
	return record.ScanID, nil
}

// NewRecord summarises a scan. all holds every finding, fresh those left
// after baseline filtering.
func NewRecord(root, source string, all, fresh []types.Finding, filesScanned int, d time.Duration, baselineFile string) ScanRecord {
	c := report.Count(all)
	top := make([]FindingSummary, 0, min(len(fresh), 10))
	for _, f := range fresh[:min(len(fresh), 10)] {
		top = append(top, FindingSummary{File: f.File, Rule: f.RuleName, Severity: string(f.Severity), Line: f.LineNumber})
	}
	return ScanRecord{
		Timestamp:      time.Now().UTC(),
		Root:           root,
		Source:         source,
		TotalFindings:  len(all),
		NewFindings:    len(fresh),
		BaselinedCount: len(all) - len(fresh),
		SeverityCounts: map[string]int{
			string(types.SevHigh): c.High,
			string(types.SevMed):  c.Medium,
			string(types.SevLow):  c.Low,
		},
		FilesScanned: filesScanned,
		Duration:     d.String(),
		BaselineFile: baselineFile,
		TopFindings:  top,
		AllFindings:  Redact(all),
	}
}

// Redact returns a copy of findings with the matched content and its line
// replaced.
func Redact(findings []types.Finding) []types.Finding {
	out := make([]types.Finding, len(findings))
	for i, f := range findings {
		out[i] = f
		if f.Content != "" {
			out[i].Content = redacted
		}
		if f.Context != "" {
			out[i].Context = redacted
		}
	}
	return out
}
