package engine

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/camel-leaked/camel-leaked/internal/ignore"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes caps the size of files read by Walk.
const DefaultMaxBytes int64 = 1 << 20

// A file containing this directive anywhere is skipped by tree scans.
const fileIgnoreDirective = "camel-leaked:ignore-file"

// WalkConfig selects the files of a content scan.
type WalkConfig struct {
	Root            string
	IncludeGlobs    string // comma-separated
	ExcludeGlobs    string // comma-separated
	MaxBytes        int64  // <= 0 means DefaultMaxBytes
	DefaultExcludes bool
	// SkipFiles are root-relative slash paths never scanned, such as the
	// baseline file.
	SkipFiles []string
}

// isStateFile reports files written by camel-leaked itself. They hold
// findings verbatim and would otherwise be reported on the next scan.
func isStateFile(rel string) bool {
	base := path.Base(rel)
	return strings.HasPrefix(base, ".camel-leaked-") || strings.HasPrefix(base, "camel-leaked-export.")
}

func (c WalkConfig) maxBytes() int64 {
	if c.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return c.MaxBytes
}

// Walk traverses cfg.Root and invokes handle for each eligible text file
// with its slash-separated path relative to the root. Unreadable entries are
// skipped; only cancellation or an unusable ignore file stops the walk.
func Walk(ctx context.Context, cfg WalkConfig, handle func(path string, data []byte)) error {
	ign, err := ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	if err != nil {
		return fmt.Errorf("read %s: %w", ignore.FileName, err)
	}
	limit := cfg.maxBytes()
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != cfg.Root && (d.Name() == ".git" || cfg.DefaultExcludes && isDefaultDirExcluded(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(cfg.Root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if isStateFile(rel) || slices.Contains(cfg.SkipFiles, rel) {
			return nil
		}
		if !allowedByGlobs(rel, cfg.IncludeGlobs, cfg.ExcludeGlobs) || ign.Match(rel) {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > limit {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		if looksBinary(b) || !looksText(b) || bytes.Contains(b, []byte(fileIgnoreDirective)) {
			return nil
		}
		handle(rel, b)
		return nil
	})
}

// looksBinary reports a NUL byte within the first 800 bytes.
func looksBinary(b []byte) bool {
	n := min(len(b), 800)
	return bytes.IndexByte(b[:n], 0) >= 0
}

// looksText reports whether the detected media type descends from
// text/plain (source, JSON, XML, shell scripts and so on).
func looksText(b []byte) bool {
	for mt := mimetype.Detect(b); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

// CountTargets returns the number of files Walk would hand to a scan.
func CountTargets(ctx context.Context, cfg WalkConfig) (int, error) {
	n := 0
	err := Walk(ctx, cfg, func(string, []byte) { n++ })
	return n, err
}
