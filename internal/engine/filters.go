package engine

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/camel-leaked/camel-leaked/internal/ignore"
	"github.com/camel-leaked/camel-leaked/internal/types"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"target":       true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"coverage":     true,
}

// noisy or generated artifacts skipped when default excludes are on
var defaultExcludeFileSuffixes = []string{
	".min.js", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so", ".dylib",
	".wasm", ".pyc",
	".pb.go",
}

var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
	".DS_Store":         true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	if strings.HasSuffix(lowerRel, ".lock") {
		return true
	}
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	return defaultExcludeFileNames[filepath.Base(lowerRel)]
}

// allowedByGlobs reports whether relPath passes the comma-separated include
// and exclude globs. Includes, when present, must match; excludes are
// subtracted last.
func allowedByGlobs(relPath, include, exclude string) bool {
	rp := filepath.ToSlash(relPath)
	if inc := parseGlobsList(include); len(inc) > 0 && !matchAnyGlob(rp, inc) {
		return false
	}
	if exc := parseGlobsList(exclude); len(exc) > 0 && matchAnyGlob(rp, exc) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}

// FilterPaths drops findings whose file is rejected by cfg's globs or by
// the ignore file under cfg.Root. Findings without a file are kept.
func FilterPaths(fs []types.Finding, cfg WalkConfig) []types.Finding {
	var ign ignore.Matcher
	if cfg.Root != "" {
		ign, _ = ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
	}
	out := make([]types.Finding, 0, len(fs))
	for _, f := range fs {
		if f.File != "" {
			if !allowedByGlobs(f.File, cfg.IncludeGlobs, cfg.ExcludeGlobs) || ign.Match(f.File) {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
