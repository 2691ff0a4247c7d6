package tui

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/types"
	tea "github.com/charmbracelet/bubbletea"
)

func status(format string, args ...any) tea.Cmd {
	msg := statusMsg(fmt.Sprintf(format, args...))
	return func() tea.Msg { return msg }
}

func savePrefs(p Prefs) tea.Cmd {
	return func() tea.Msg {
		if err := SavePrefs(p); err != nil {
			return statusMsg(fmt.Sprintf("Could not save preferences: %v", err))
		}
		return nil
	}
}

// addToBaseline records the selected finding in the baseline file, reading
// it fresh so entries written by other commands are kept.
func (m *Model) addToBaseline() tea.Cmd {
	f := m.selected()
	if f == nil {
		return status("No finding selected")
	}
	if m.opts.BaselinePath == "" {
		return status("No baseline file configured")
	}
	base, err := report.LoadBaseline(m.opts.BaselinePath)
	if err != nil {
		return status("Baseline error: %v", err)
	}
	base.Add(*f)
	if err := base.Save(m.opts.BaselinePath); err != nil {
		return status("Baseline error: %v", err)
	}
	m.opts.Baseline.Add(*f)
	m.rebuildRows()
	return status("Baselined %s in %s", f.RuleName, m.opts.BaselinePath)
}

func (m Model) copyPath() tea.Cmd {
	f := m.selected()
	if f == nil {
		return status("No finding selected")
	}
	loc := f.File
	if f.LineNumber > 0 {
		loc = fmt.Sprintf("%s:%d", f.File, f.LineNumber)
	}
	if err := clipboard.WriteAll(loc); err != nil {
		return status("Clipboard error: %v", err)
	}
	return status("Copied: %s", loc)
}

// copyFinding copies a text description of the selected finding. The
// secret itself is included only when masking is off.
func (m Model) copyFinding() tea.Cmd {
	f := m.selected()
	if f == nil {
		return status("No finding selected")
	}
	if err := clipboard.WriteAll(describe(*f, m.opts.Prefs.HideSecrets)); err != nil {
		return status("Clipboard error: %v", err)
	}
	return status("Copied finding details to clipboard")
}

func describe(f types.Finding, hide bool) string {
	content, context := f.Content, f.Context
	if hide {
		content = redactSecret(f.Content)
		context = strings.ReplaceAll(f.Context, f.Content, content)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "File: %s\n", f.File)
	fmt.Fprintf(&sb, "Line: %s\n", lineText(f.LineNumber))
	fmt.Fprintf(&sb, "Rule: %s\n", f.RuleName)
	fmt.Fprintf(&sb, "Severity: %s\n", severityText(f.Severity))
	fmt.Fprintf(&sb, "Match: %s\n", content)
	if context != "" {
		fmt.Fprintf(&sb, "\nContext:\n%s\n", context)
	}
	return sb.String()
}

// export writes the visible findings to camel-leaked-export.{json,sarif}
// in the working directory.
func (m Model) export(format string) tea.Cmd {
	if len(m.visible) == 0 {
		return status("Nothing to export")
	}
	shown := make([]types.Finding, len(m.visible))
	for i, idx := range m.visible {
		shown[i] = m.findings[idx]
	}
	var buf bytes.Buffer
	var err error
	switch format {
	case "sarif":
		err = report.WriteSARIF(&buf, shown, report.SARIFOptions{})
	default:
		format = "json"
		err = report.WriteJSON(&buf, shown)
	}
	if err != nil {
		return status("Export error: %v", err)
	}
	name := "camel-leaked-export." + format
	if err := os.WriteFile(name, buf.Bytes(), 0o600); err != nil {
		return status("Export error: %v", err)
	}
	return status("Exported %d findings to %s", len(shown), name)
}
