// Package ignore reads .camel-leakedignore files: gitignore-style path
// patterns for files that should never be scanned.
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the scan root.
const FileName = ".camel-leakedignore"

type pattern struct {
	glob   string
	dir    bool // trailing "/": matches the directory and everything below
	negate bool
}

// Matcher decides whether a slash-separated relative path is ignored. The
// zero value ignores nothing.
type Matcher struct {
	patterns []pattern
}

// Load reads an ignore file. A missing file yields an empty Matcher.
func Load(p string) (Matcher, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Matcher{}, nil
		}
		return Matcher{}, err
	}
	return Parse(b), nil
}

// Parse builds a Matcher from ignore file content.
func Parse(b []byte) Matcher {
	var m Matcher
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var p pattern
		if strings.HasPrefix(line, "!") {
			p.negate = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.dir = true
			line = strings.TrimSuffix(line, "/")
		}
		if strings.HasPrefix(line, "/") {
			line = strings.TrimPrefix(line, "/")
		} else if !strings.Contains(line, "/") {
			// unanchored: may match at any depth
			line = "**/" + line
		}
		if line == "" || !doublestar.ValidatePattern(line) {
			continue
		}
		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether rel is ignored. Later patterns override earlier
// ones, so "!keep.env" can re-include a file.
func (m Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "./")
	ignored := false
	for _, p := range m.patterns {
		if p.matches(rel) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p pattern) matches(rel string) bool {
	if !p.dir {
		ok, _ := doublestar.Match(p.glob, rel)
		return ok
	}
	// A directory pattern matches any of rel's parent directories.
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if ok, _ := doublestar.Match(p.glob, dir); ok {
			return true
		}
	}
	return false
}

// Append adds pattern to the ignore file at root, creating the file if
// needed. A pattern already present is not added twice.
func Append(root, pattern string) (added bool, err error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false, errors.New("empty pattern")
	}
	p := filepath.Join(root, FileName)
	existing, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	for line := range strings.Lines(string(existing)) {
		if strings.TrimSpace(line) == pattern {
			return false, nil
		}
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		pattern = "\n" + pattern
	}
	if _, err := f.WriteString(pattern + "\n"); err != nil {
		return false, err
	}
	return true, nil
}
