package engine

import (
	"iter"
	"strconv"
	"strings"

	"github.com/camel-leaked/camel-leaked/internal/detectors"
	"github.com/camel-leaked/camel-leaked/internal/diff"
	"github.com/camel-leaked/camel-leaked/internal/rules"
	"github.com/camel-leaked/camel-leaked/internal/types"
	xxhash "github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Engine scans text with a fixed snapshot of rules. It holds no mutable
// state after New returns and may be shared across goroutines.
type Engine struct {
	rules      []rules.Rule
	entropy    detectors.EntropyConfig
	useEntropy bool
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEntropy sets the entropy thresholds. Zero fields keep the defaults.
func WithEntropy(cfg detectors.EntropyConfig) Option {
	return func(e *Engine) {
		e.entropy = cfg
		e.useEntropy = true
	}
}

// WithoutEntropy disables the entropy detector; only rules run.
func WithoutEntropy() Option {
	return func(e *Engine) { e.useEntropy = false }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New snapshots the rules of set. Later changes to set do not affect the
// returned Engine. A nil set scans with entropy only.
func New(set *rules.Set, opts ...Option) *Engine {
	e := &Engine{
		entropy:    detectors.DefaultEntropyConfig(),
		useEntropy: true,
		log:        zap.NewNop(),
	}
	if set != nil {
		e.rules = set.Rules()
	}
	for _, o := range opts {
		o(e)
	}
	e.log.Debug("engine ready",
		zap.Int("rules", len(e.rules)),
		zap.Bool("entropy", e.useEntropy),
		zap.Float64("min_entropy", e.entropy.MinEntropy),
		zap.Int("min_length", e.entropy.MinLength))
	return e
}

// Rules returns the engine's rule snapshot.
func (e *Engine) Rules() []rules.Rule {
	out := make([]rules.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// ScanDiff scans the added lines of a unified diff. It never fails:
// malformed input only yields fewer or less precisely located findings.
func (e *Engine) ScanDiff(text string) []types.Finding {
	out, lines := e.scan(diff.AddedLines(text))
	e.log.Debug("diff scanned", zap.Int("added_lines", lines), zap.Int("findings", len(out)))
	return out
}

// ScanContent scans every line of text as if it had been added, numbering
// lines from 1 and attributing them to filename.
func (e *Engine) ScanContent(text, filename string) []types.Finding {
	out, lines := e.scan(diff.ContentLines(text, filename))
	e.log.Debug("content scanned", zap.String("file", filename), zap.Int("lines", lines), zap.Int("findings", len(out)))
	return out
}

func (e *Engine) scan(seq iter.Seq[diff.Line]) ([]types.Finding, int) {
	out := []types.Finding{}
	n := 0
	for l := range seq {
		n++
		out = e.scanLine(out, l)
	}
	return out, n
}

// scanLine appends rule findings, then entropy findings, for one line.
func (e *Engine) scanLine(out []types.Finding, l diff.Line) []types.Finding {
	// findings are rendered verbatim by every reporter
	l.File = strings.ToValidUTF8(l.File, "\uFFFD")
	l.Text = strings.ToValidUTF8(l.Text, "\uFFFD")
	if detectors.IgnoreLine(l.Text) {
		return out
	}
	for _, m := range detectors.MatchLine(l.Text, e.rules) {
		out = append(out, types.Finding{
			File:       l.File,
			LineNumber: l.Number,
			RuleName:   m.Rule.Name,
			Content:    m.Text,
			Context:    l.Text,
			Severity:   m.Rule.Severity,
		})
	}
	if !e.useEntropy {
		return out
	}
	for _, tok := range e.entropy.Detect(l.Text) {
		out = append(out, types.Finding{
			File:       l.File,
			LineNumber: l.Number,
			RuleName:   types.HighEntropyRule,
			Content:    tok,
			Context:    l.Text,
			Severity:   types.SevMed,
		})
	}
	return out
}

// Fingerprint identifies the detection settings. Cached results computed
// under a different fingerprint are stale.
func (e *Engine) Fingerprint() string {
	h := xxhash.New()
	for _, r := range e.rules {
		_, _ = h.WriteString(r.Name)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(r.Pattern.String())
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(string(r.Severity))
		_, _ = h.WriteString("\x01")
	}
	if e.useEntropy {
		_, _ = h.WriteString(strconv.FormatFloat(e.entropy.MinEntropy, 'g', -1, 64))
		_, _ = h.WriteString("/")
		_, _ = h.WriteString(strconv.Itoa(e.entropy.MinLength))
	}
	return hexSum(h.Sum64())
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	return hexSum(xxhash.Sum64(b))
}

func hexSum(sum uint64) string {
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
