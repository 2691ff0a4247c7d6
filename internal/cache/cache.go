package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/camel-leaked/camel-leaked/internal/types"
)

// DB remembers, per file, the content hash seen by the last tree scan and
// the findings it produced. Fingerprint identifies the rule set and entropy
// settings the entries were computed with; a mismatch invalidates them all.
type DB struct {
	Fingerprint string                     `json:"fingerprint"`
	Entries     map[string]string          `json:"entries"` // path relative to root -> xxhash hex
	Findings    map[string][]types.Finding `json:"findings,omitempty"`
}

// New returns an empty DB bound to fingerprint.
func New(fingerprint string) *DB {
	return &DB{
		Fingerprint: fingerprint,
		Entries:     map[string]string{},
		Findings:    map[string][]types.Finding{},
	}
}

// Lookup returns the cached findings for path if its hash is unchanged.
func (db *DB) Lookup(path, hash string) ([]types.Finding, bool) {
	if db == nil || db.Entries == nil {
		return nil, false
	}
	if h, ok := db.Entries[path]; !ok || h != hash {
		return nil, false
	}
	return db.Findings[path], true
}

// Put records the hash and findings for path.
func (db *DB) Put(path, hash string, findings []types.Finding) {
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	if db.Findings == nil {
		db.Findings = map[string][]types.Finding{}
	}
	db.Entries[path] = hash
	if len(findings) == 0 {
		delete(db.Findings, path)
		return
	}
	db.Findings[path] = findings
}

func stateDir(root string) string {
	// Prefer .git so cache files are never committed by accident.
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return gitDir
	}
	return root
}

func defaultPath(root string) string {
	dir := stateDir(root)
	if dir == root {
		return filepath.Join(root, ".camel-leaked-cache.json")
	}
	return filepath.Join(dir, "camel-leaked-cache.json")
}

// Load reads the cache under root. A missing, unreadable or stale cache
// yields an empty DB bound to fingerprint together with the reason.
func Load(root, fingerprint string) (*DB, error) {
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return New(fingerprint), err
	}
	var db DB
	if err := json.Unmarshal(b, &db); err != nil {
		return New(fingerprint), fmt.Errorf("decode cache: %w", err)
	}
	if db.Fingerprint != fingerprint {
		return New(fingerprint), errors.New("cache built with different rules")
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	if db.Findings == nil {
		db.Findings = map[string][]types.Finding{}
	}
	return &db, nil
}

func Save(root string, db *DB) error {
	if db == nil || db.Entries == nil {
		return errors.New("empty cache")
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0o600)
}

// Retain drops entries for paths not in keep, e.g. files deleted since the
// previous scan.
func (db *DB) Retain(keep map[string]bool) {
	if db == nil {
		return
	}
	for p := range db.Entries {
		if !keep[p] {
			delete(db.Entries, p)
			delete(db.Findings, p)
		}
	}
}
