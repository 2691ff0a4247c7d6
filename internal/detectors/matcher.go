package detectors

import "github.com/camel-leaked/camel-leaked/internal/rules"

// Match is one rule hit within a line.
type Match struct {
	Rule rules.Rule
	Text string
}

// MatchLine applies every rule in order and returns all non-overlapping
// matches, rule by rule. Empty matches are skipped.
func MatchLine(line string, rs []rules.Rule) []Match {
	var out []Match
	for _, r := range rs {
		for _, m := range r.Pattern.FindAllString(line, -1) {
			if m == "" {
				continue
			}
			out = append(out, Match{Rule: r, Text: m})
		}
	}
	return out
}
