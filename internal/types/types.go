package types

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// HighEntropyRule is the rule name reported for entropy-sourced findings.
const HighEntropyRule = "High Entropy String"

// ParseSeverity maps a config value to a Severity. The empty string yields
// SevHigh; unknown values report ok=false.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case "":
		return SevHigh, true
	case SevLow, SevMed, SevHigh:
		return Severity(s), true
	}
	return "", false
}

// Finding describes one suspected secret: where it was found, which rule
// matched, the matched substring and the full line it came from.
type Finding struct {
	File       string   `json:"file"`
	LineNumber int      `json:"line_number"` // 1-based in the new file; 0 if untracked
	RuleName   string   `json:"rule_name"`
	Content    string   `json:"content"`
	Context    string   `json:"context"`
	Severity   Severity `json:"severity,omitempty"`
}

// Key identifies a finding independent of its line position.
func (f Finding) Key() string {
	return f.File + "|" + f.RuleName + "|" + f.Content
}
