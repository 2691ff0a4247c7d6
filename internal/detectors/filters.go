package detectors

import (
	"regexp"
	"strings"
)

// IgnoreMarker suppresses every finding on a line when it follows a
// "#" or "//" comment token.
const IgnoreMarker = "camel-leaked-ignore"

var (
	reInlineIgnore = regexp.MustCompile(`(?:#|//).*` + regexp.QuoteMeta(IgnoreMarker))
	reBase64Blob   = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
	reLowerHex     = regexp.MustCompile(`^[0-9a-f]{32,64}$`)
	reConstName    = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

// Tokens of this length or longer are reported even when they have a
// benign shape; real keys often look like long base64 or hex.
const commonShapeCutoff = 40

var benignPrefixes = []string{"test", "example", "demo", "placeholder"}

// IgnoreLine reports whether a line is excluded from all detection: it
// carries an inline ignore marker, or it opens with a comment character.
func IgnoreLine(line string) bool {
	if reInlineIgnore.MatchString(line) {
		return true
	}
	t := strings.TrimLeft(line, " \t")
	return t != "" && strings.ContainsRune("#/*", rune(t[0]))
}

// IsCommon reports whether an entropy candidate has a shape that is almost
// never a secret.
func IsCommon(tok string) bool {
	// CONSTANT_STYLE identifiers, at any length.
	if reConstName.MatchString(tok) {
		return true
	}
	if len(tok) >= commonShapeCutoff {
		return false
	}
	// Short encoded blobs. The padding or '+' '/' symbols are what set them
	// apart from plain alphanumeric tokens.
	if reBase64Blob.MatchString(tok) && strings.ContainsAny(tok, "+/=") {
		return true
	}
	if reLowerHex.MatchString(tok) {
		return true
	}
	lower := strings.ToLower(tok)
	for _, p := range benignPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
