package detectors

import (
	"math"
	"regexp"
)

const (
	DefaultMinEntropy = 4.5
	DefaultMinLength  = 20
)

// Candidate extraction uses a fixed floor of 20 characters regardless of
// MinLength.
var reCandidate = regexp.MustCompile(`[A-Za-z0-9+/=]{20,}`)

// EntropyConfig tunes the entropy detector. Fields are taken literally: a
// zero MinEntropy reports every candidate that is not benign. Use
// DefaultEntropyConfig for the standard thresholds.
type EntropyConfig struct {
	MinEntropy float64
	MinLength  int
}

func DefaultEntropyConfig() EntropyConfig {
	return EntropyConfig{MinEntropy: DefaultMinEntropy, MinLength: DefaultMinLength}
}

// Detect returns the high-entropy tokens of line in the order they appear.
// A token at exactly MinEntropy is kept.
func (c EntropyConfig) Detect(line string) []string {
	var out []string
	for _, tok := range reCandidate.FindAllString(line, -1) {
		if len(tok) < c.MinLength {
			continue
		}
		if ShannonEntropy(tok) < c.MinEntropy {
			continue
		}
		if IsCommon(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// ShannonEntropy returns the entropy of s in bits per character.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	count := map[rune]int{}
	n := 0
	for _, r := range s {
		count[r]++
		n++
	}
	h := 0.0
	for _, c := range count {
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}
