package tui

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/camel-leaked/camel-leaked/internal/audit"
	"github.com/camel-leaked/camel-leaked/internal/report"
	"github.com/camel-leaked/camel-leaked/internal/types"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("7"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 4)

	sevHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const defaultHint = "q: quit | ?: help | /: search | 1-3: severity | b: baseline | c: copy | r: rescan | a: history"

// severityText is plain text; ANSI codes break table truncation.
func severityText(s types.Severity) string {
	switch s {
	case types.SevMed:
		return "MED"
	case types.SevLow:
		return "LOW"
	default:
		return "HIGH"
	}
}

type (
	statusMsg   string
	findingsMsg []types.Finding
)

// Options configures a review session.
type Options struct {
	// Baseline marks accepted findings; BaselinePath is where 'b' saves.
	Baseline     report.Baseline
	BaselinePath string
	// Rescan re-runs the scan that produced the findings. Nil disables 'r'.
	Rescan func() ([]types.Finding, error)
	// Timestamp is when the findings were produced; zero means now.
	Timestamp time.Time
	// Audit is the scan history shown by 'a'. Nil disables it.
	Audit *audit.Log
	Prefs Prefs
}

// Model is the review screen: a findings table over a detail pane.
type Model struct {
	opts     Options
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	search   textinput.Model

	findings []types.Finding
	visible  []int // indices into findings after filtering

	searchMode     bool
	searchQuery    string
	severityFilter types.Severity

	scanning    bool
	showHelp    bool
	showHistory bool
	history     []audit.ScanRecord
	historySel  int
	historical  bool

	scanTime time.Time
	status   string
	width    int
	height   int
	ready    bool
	quitting bool
}

func NewModel(findings []types.Finding, opts Options) Model {
	if opts.Baseline.Items == nil {
		opts.Baseline.Items = map[string]bool{}
	}
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "file, rule or content..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "

	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	m := Model{
		opts:     opts,
		table:    t,
		spinner:  sp,
		search:   ti,
		scanTime: ts,
		status:   defaultHint,
	}
	m.setFindings(findings)
	return m
}

func columns(width int) []table.Column {
	rest := max(width-8-6-6, 40)
	return []table.Column{
		{Title: "Sev", Width: 8},
		{Title: "Rule", Width: rest * 3 / 10},
		{Title: "File", Width: rest * 4 / 10},
		{Title: "Line", Width: 6},
		{Title: "Match", Width: rest * 3 / 10},
	}
}

func (m *Model) setFindings(findings []types.Finding) {
	m.findings = findings
	m.applyFilters()
}

// applyFilters recomputes the visible rows from the search query and the
// severity filter.
func (m *Model) applyFilters() {
	q := strings.ToLower(m.searchQuery)
	m.visible = make([]int, 0, len(m.findings))
	for i, f := range m.findings {
		if m.severityFilter != "" && f.Severity != m.severityFilter {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(f.File), q) &&
			!strings.Contains(strings.ToLower(f.RuleName), q) &&
			!strings.Contains(strings.ToLower(f.Content), q) {
			continue
		}
		m.visible = append(m.visible, i)
	}
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, len(m.visible))
	for i, idx := range m.visible {
		f := m.findings[idx]
		sev := severityText(f.Severity)
		if m.opts.Baseline.Contains(f) {
			sev = "(b) " + sev
		}
		rows[i] = table.Row{sev, f.RuleName, f.File, lineText(f.LineNumber), m.secret(f.Content)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.updateDetail()
}

func lineText(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func (m Model) secret(s string) string {
	if m.opts.Prefs.HideSecrets {
		return redactSecret(s)
	}
	return s
}

// selected returns the finding under the cursor, or nil.
func (m Model) selected() *types.Finding {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return nil
	}
	return &m.findings[m.visible[c]]
}

func (m *Model) updateDetail() {
	if !m.ready {
		return
	}
	f := m.selected()
	if f == nil {
		m.viewport.SetContent("")
		return
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Finding") + "\n\n")
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Rule:    "), f.RuleName)
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Severity:"), severityText(f.Severity))
	fmt.Fprintf(&b, "%s %s:%s\n", keyStyle.Render("Location:"), f.File, lineText(f.LineNumber))
	fmt.Fprintf(&b, "%s %s\n", keyStyle.Render("Match:   "), matchStyle.Render(m.secret(f.Content)))
	if m.opts.Baseline.Contains(*f) {
		b.WriteString(dimStyle.Render("baselined") + "\n")
	}
	if f.Context != "" {
		line := f.Context
		if m.opts.Prefs.HideSecrets && f.Content != "" {
			line = strings.ReplaceAll(line, f.Content, redactSecret(f.Content))
		}
		if m.opts.Prefs.ContextHighlight {
			line = highlightLine(line, f.File)
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", keyStyle.Render("Line:"), line)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// highlightLine colours one source line by the lexer picked from filename.
// Unknown file types are returned unchanged.
func highlightLine(line, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		return line
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}
	it, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) resize() {
	tableHeight := max(m.height/2-4, 3)
	m.table.SetColumns(columns(m.width - 4))
	m.table.SetWidth(m.width - 2)
	m.table.SetHeight(tableHeight)
	detailHeight := max(m.height-tableHeight-8, 3)
	if !m.ready {
		m.viewport = viewport.New(m.width-4, detailHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width - 4
		m.viewport.Height = detailHeight
	}
	m.updateDetail()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case findingsMsg:
		m.scanning = false
		m.historical = false
		m.scanTime = time.Now()
		m.setFindings([]types.Finding(msg))
		m.status = fmt.Sprintf("Rescan complete: %d findings", len(msg))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searchMode {
		switch msg.String() {
		case "enter":
			m.searchMode = false
			m.search.Blur()
			m.searchQuery = m.search.Value()
			m.applyFilters()
			return m, nil
		case "esc":
			m.searchMode = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	if m.showHistory {
		return m.handleHistoryKey(msg)
	}
	if m.scanning {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		m.searchMode = true
		m.search.SetValue(m.searchQuery)
		cmd := m.search.Focus()
		return m, cmd
	case "1", "2", "3":
		m.severityFilter = map[string]types.Severity{"1": types.SevHigh, "2": types.SevMed, "3": types.SevLow}[msg.String()]
		m.applyFilters()
		return m, nil
	case "0", "esc":
		m.severityFilter = ""
		m.searchQuery = ""
		m.search.SetValue("")
		m.applyFilters()
		return m, nil
	case "h":
		m.opts.Prefs.HideSecrets = !m.opts.Prefs.HideSecrets
		m.rebuildRows()
		return m, savePrefs(m.opts.Prefs)
	case "s":
		m.opts.Prefs.ContextHighlight = !m.opts.Prefs.ContextHighlight
		m.updateDetail()
		return m, savePrefs(m.opts.Prefs)
	case "b":
		return m, m.addToBaseline()
	case "c":
		return m, m.copyFinding()
	case "y":
		return m, m.copyPath()
	case "e":
		return m, m.export("json")
	case "E":
		return m, m.export("sarif")
	case "r":
		if m.opts.Rescan == nil {
			m.status = "Rescan not available"
			return m, nil
		}
		m.scanning = true
		return m, tea.Batch(m.rescan(), m.spinner.Tick)
	case "a":
		if m.opts.Audit == nil {
			m.status = "No scan history"
			return m, nil
		}
		h, err := m.opts.Audit.History()
		if err != nil {
			m.status = fmt.Sprintf("History error: %v", err)
			return m, nil
		}
		m.history, m.historySel, m.showHistory = h, 0, true
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.updateDetail()
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "a":
		m.showHistory = false
	case "up", "k":
		if m.historySel > 0 {
			m.historySel--
		}
	case "down", "j":
		if m.historySel < len(m.history)-1 {
			m.historySel++
		}
	case "enter":
		if m.historySel < len(m.history) {
			rec := m.history[m.historySel]
			m.showHistory = false
			m.historical = true
			m.scanTime = rec.Timestamp
			// history holds redacted findings
			m.setFindings(rec.AllFindings)
			m.status = fmt.Sprintf("Loaded scan %s from %s", shortID(rec.ScanID), rec.Timestamp.Local().Format("Jan 2, 15:04"))
		}
	}
	return m, nil
}

func shortID(id string) string {
	return id[:min(len(id), 8)]
}

func (m *Model) rescan() tea.Cmd {
	run := m.opts.Rescan
	return func() tea.Msg {
		findings, err := run()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return findingsMsg(findings)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		box := popupStyle.Width(40).Align(lipgloss.Center).
			Render(m.spinner.View() + "  Rescanning...")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText()))
	}
	if m.showHistory {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(m.historyView()))
	}

	var b strings.Builder
	b.WriteString(m.statsLine() + "\n")
	if len(m.findings) == 0 {
		b.WriteString(paneStyle.Width(m.width-2).Render(okStyle.Render("[OK] No secrets detected")) + "\n")
	} else {
		b.WriteString(paneStyle.Render(m.table.View()) + "\n")
		b.WriteString(paneStyle.Width(m.width-2).Render(m.viewport.View()) + "\n")
	}
	if m.searchMode {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(statusStyle.Width(m.width).Render(m.status))
	}
	return b.String()
}

func (m Model) statsLine() string {
	var shown []types.Finding
	for _, i := range m.visible {
		shown = append(shown, m.findings[i])
	}
	c := report.Count(shown)
	line := fmt.Sprintf("Showing: %d/%d  |  %s %-3d  |  %s %-3d  |  %s %-3d  |  %s",
		len(m.visible), len(m.findings),
		sevHighStyle.Render("High:"), c.High,
		sevMedStyle.Render("Med:"), c.Medium,
		sevLowStyle.Render("Low:"), c.Low,
		formatAge(time.Since(m.scanTime)))
	if m.searchQuery != "" {
		line += fmt.Sprintf("  [search: %q]", m.searchQuery)
	}
	if m.severityFilter != "" {
		line += "  [sev: " + severityText(m.severityFilter) + "]"
	}
	if m.historical {
		line += "  [history]"
	}
	return line
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func (m Model) historyView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Scan history") + "\n\n")
	if len(m.history) == 0 {
		b.WriteString(dimStyle.Render("No scans recorded yet"))
		return b.String()
	}
	for i, r := range m.history {
		cursor := "  "
		if i == m.historySel {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%s  %-6s %3d findings (%d new)  %s\n",
			cursor, r.Timestamp.Local().Format("Jan 2 15:04"), r.Source, r.TotalFindings, r.NewFindings, shortID(r.ScanID))
	}
	b.WriteString("\n" + dimStyle.Render("enter: load | esc: close"))
	return b.String()
}

func helpText() string {
	keys := [][2]string{
		{"j/k, ↑/↓", "move"},
		{"/", "search file, rule or content"},
		{"1 2 3", "show high, medium or low only"},
		{"0, esc", "clear filters"},
		{"h", "toggle secret masking"},
		{"s", "toggle syntax highlighting"},
		{"b", "add finding to baseline"},
		{"c / y", "copy finding / copy path"},
		{"e / E", "export view as JSON / SARIF"},
		{"r", "rescan"},
		{"a", "scan history"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s  %s\n", keyStyle.Render(fmt.Sprintf("%-10s", k[0])), k[1])
	}
	return b.String()
}
