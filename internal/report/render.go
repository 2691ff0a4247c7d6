package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	// ShowSecrets prints matched content unmasked.
	ShowSecrets bool
}

var (
	highStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	medStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// PrintTable renders findings as a bordered table followed by the summary
// footer.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("SEVERITY", "RULE", "FILE", "LINE", "MATCH")
		for _, f := range findings {
			if err := table.Append([]string{
				severityLabel(f.Severity, opts.NoColor),
				f.RuleName,
				displayFile(f.File),
				lineLabel(f.LineNumber),
				display(f.Content, opts.ShowSecrets),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	printFooter(w, findings, opts)
	return nil
}

// PrintText renders one finding per line, suitable for logs and grep.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		width := 8
		for _, f := range findings {
			width = max(width, len(f.RuleName))
		}
		fmt.Fprintf(w, "Findings: %d\n", len(findings))
		for _, f := range findings {
			fmt.Fprintf(w, "%-6s %-*s %s:%d  %s\n",
				severityLabel(f.Severity, opts.NoColor), width, f.RuleName,
				displayFile(f.File), f.LineNumber, display(f.Content, opts.ShowSecrets))
		}
	}
	printFooter(w, findings, opts)
}

func printFooter(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	c := Count(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n", len(findings), c.High, c.Medium, c.Low)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
}

// Counts tallies findings per severity. Findings without a severity count
// as high.
type Counts struct {
	High, Medium, Low int
}

func Count(findings []types.Finding) Counts {
	var c Counts
	for _, f := range findings {
		switch f.Severity {
		case types.SevMed:
			c.Medium++
		case types.SevLow:
			c.Low++
		default:
			c.High++
		}
	}
	return c
}

func display(s string, show bool) string {
	if show {
		return s
	}
	return MaskValue(s)
}

// MaskValue keeps the first and last four characters of a secret.
func MaskValue(s string) string {
	r := []rune(s)
	if len(r) <= 8 {
		return "********"
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

func displayFile(p string) string {
	if p == "" {
		return "<stdin>"
	}
	return p
}

func lineLabel(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func severityLabel(s types.Severity, noColor bool) string {
	if s == "" {
		s = types.SevHigh
	}
	if noColor {
		return string(s)
	}
	switch s {
	case types.SevHigh:
		return highStyle.Render(string(s))
	case types.SevMed:
		return medStyle.Render(string(s))
	default:
		return lowStyle.Render(string(s))
	}
}
