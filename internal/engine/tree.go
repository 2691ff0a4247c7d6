package engine

import (
	"context"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/cache"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"go.uber.org/zap"
)

// Result contains findings and basic statistics of a tree scan.
type Result struct {
	Findings     []types.Finding
	FilesScanned int
	CacheHits    int
	Duration     time.Duration
}

// ScanTree runs ScanContent over every file selected by cfg. When db is
// non-nil, files whose content hash is unchanged reuse their cached findings
// and db is updated in place; the caller decides whether to persist it.
func ScanTree(ctx context.Context, e *Engine, cfg WalkConfig, db *cache.DB) (Result, error) {
	started := time.Now()
	res := Result{Findings: []types.Finding{}}
	seen := map[string]bool{}
	err := Walk(ctx, cfg, func(p string, data []byte) {
		res.FilesScanned++
		seen[p] = true
		h := fastHash(data)
		if fs, ok := db.Lookup(p, h); ok {
			res.CacheHits++
			res.Findings = append(res.Findings, fs...)
			return
		}
		fs := e.ScanContent(string(data), p)
		if db != nil {
			db.Put(p, h, fs)
		}
		res.Findings = append(res.Findings, fs...)
	})
	res.Duration = time.Since(started)
	if err != nil {
		return res, err
	}
	db.Retain(seen)
	e.log.Debug("tree scanned",
		zap.String("root", cfg.Root),
		zap.Int("files", res.FilesScanned),
		zap.Int("cache_hits", res.CacheHits),
		zap.Int("findings", len(res.Findings)),
		zap.Duration("took", res.Duration))
	return res, nil
}
