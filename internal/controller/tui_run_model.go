package controller

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/clientguard/internal/model"
)

const (
	statusFixed   = "fixed"
	statusPending = "pending"
	statusWarning = "warning"
	statusFailed  = "failed"
)

var statusColors = map[string]lipgloss.Color{
	statusFixed:   lipgloss.Color("2"),
	statusPending: lipgloss.Color("6"),
	statusWarning: lipgloss.Color("11"),
	statusFailed:  lipgloss.Color("1"),
}

// newResultItem converts a file result into a list entry. Files that were left
// alone without anything to report are not listed.
func newResultItem(result m.FileResult, dryRun bool) (resultItem, bool) {
	item := resultItem{path: string(result.Path)}

	switch {
	case result.Err != nil:
		item.status = statusFailed
		item.details = append(item.details, "! "+result.Err.Error())
	case result.Changed && dryRun:
		item.status = statusPending
	case result.Changed:
		item.status = statusFixed
	case len(result.Diagnostics) > 0:
		item.status = statusWarning
	default:
		return resultItem{}, false
	}

	for _, ins := range result.Insertions {
		item.details = append(item.details, fmt.Sprintf("+ %d: %s", ins.At+1, strings.TrimSpace(ins.Text)))
	}

	for _, d := range result.Diagnostics {
		item.details = append(item.details, fmt.Sprintf("! %d: %s: %s", d.Line, d.Kind, d.Message))
	}

	return item, true
}

type resultDelegate struct {
	offset int
}

func (d resultDelegate) Height() int  { return 1 }
func (d resultDelegate) Spacing() int { return 0 }
func (d resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d resultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	result, ok := item.(resultItem)
	if !ok {
		return
	}

	width := m.Width() - 12 // status column (10) + spacing (2)

	var statusStyle, pathStyle lipgloss.Style

	var displayPath string

	if index == m.Index() {
		statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true).
			Width(10)
		pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
		displayPath = animateScroll(result.path, width, d.offset)
	} else {
		color, ok := statusColors[result.status]
		if !ok {
			color = lipgloss.Color("8")
		}

		statusStyle = lipgloss.NewStyle().Foreground(color).Bold(true).Width(10)
		pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		displayPath = truncateToWidth(result.path, width)
	}

	_, _ = fmt.Fprintf(w, "%s  %s", statusStyle.Render(result.status), pathStyle.Render(displayPath))
}

// runModel shows progress while files are rewritten, then the files that need attention.
type runModel struct {
	width           int
	height          int
	spinner         spinner.Model
	progressBar     progress.Model
	total           int
	processed       int
	progressPercent float64
	dryRun          bool
	currentFile     string
	rendered        bool
	finished        bool
	summary         m.Summary
	results         []resultItem
	resultsList     list.Model
	delegate        resultDelegate
	animOffset      int
	lastSelected    int
	showDetails     bool
}

func newRunModel() runModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	delegate := resultDelegate{}
	resultsList := list.New([]list.Item{}, delegate, 80, 20)
	resultsList.SetShowPagination(false)
	resultsList.SetShowFilter(true)
	resultsList.SetShowHelp(false)
	resultsList.SetShowTitle(false)
	resultsList.SetShowStatusBar(false)
	resultsList.FilterInput.Placeholder = "Filter files…"

	return runModel{
		spinner:      spin,
		progressBar:  prog,
		resultsList:  resultsList,
		delegate:     delegate,
		lastSelected: -1,
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	}))
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.progressBar.Width = m.width - 8
		if m.progressBar.Width < 20 {
			m.progressBar.Width = 20
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.finished {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case tickMsg:
		if m.finished && m.resultsList.FilterState() != list.Filtering {
			m.animOffset++
			m.delegate.offset = m.animOffset
			m.resultsList.SetDelegate(m.delegate)
		}

		return m, tea.Tick(time.Millisecond*150, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case startMsg:
		m.total = msg.total
		m.dryRun = msg.dryRun
		m.processed = 0
		m.progressPercent = 0
		m.rendered = true

	case fileResultMsg:
		m = m.handleFileResult(msg)

	case summaryMsg:
		m.summary = msg.summary
		m.finished = true
		m.rendered = true
		m.progressPercent = 1

		if len(m.results) == 0 {
			return m, tea.Quit
		}

		m.lastSelected = 0

	case closeMsg:
		if !m.finished {
			return m, tea.Quit
		}
	}

	return m, cmd
}

func (m runModel) handleFileResult(msg fileResultMsg) runModel {
	m.processed++
	m.currentFile = string(msg.result.Path)
	m.rendered = true

	if m.total > 0 {
		m.progressPercent = float64(m.processed) / float64(m.total)
	}

	item, ok := newResultItem(msg.result, m.dryRun)
	if !ok {
		return m
	}

	m.results = append(m.results, item)

	items := make([]list.Item, 0, len(m.results))
	for _, r := range m.results {
		items = append(items, r)
	}

	m.resultsList.SetItems(items)

	return m
}

func (m runModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	if !m.finished {
		return m, nil
	}

	if m.resultsList.FilterState() != list.Filtering && (msg.String() == "enter" || msg.String() == " ") {
		m.showDetails = !m.showDetails

		return m, nil
	}

	var cmd tea.Cmd

	m.resultsList, cmd = m.resultsList.Update(msg)

	if m.resultsList.Index() != m.lastSelected {
		m.lastSelected = m.resultsList.Index()
		m.animOffset = 0
		m.delegate.offset = 0
		m.resultsList.SetDelegate(m.delegate)
	}

	return m, cmd
}

func (m runModel) View() string {
	if !m.rendered {
		return "Initializing…\n"
	}

	if m.finished {
		return m.viewResults()
	}

	return m.viewProgress()
}

func (m runModel) viewProgress() string {
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	title := titleStyle.Render(m.spinner.View() + " clientguard")

	mode := "write"
	if m.dryRun {
		mode = "dry run"
	}

	summary := summaryStyle.Render(fmt.Sprintf(
		"Files: %s / %s  •  Needs attention: %s  •  Mode: %s",
		accentStyle.Render(fmt.Sprintf("%d", m.processed)),
		accentStyle.Render(fmt.Sprintf("%d", m.total)),
		accentStyle.Render(fmt.Sprintf("%d", len(m.results))),
		accentStyle.Render(mode),
	))

	progressView := lipgloss.NewStyle().Padding(0, 2).Render(m.progressBar.ViewAs(m.progressPercent))

	current := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14")).
		Padding(1, 2).
		Render(truncateToWidth(m.currentFile, max(m.width-4, 10)))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(m.width).
		Render("Press q to quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, progressView, current, footer)
}

func (m runModel) viewResults() string {
	accentColor := lipgloss.Color("6")
	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	changedLabel := "Changed"
	if m.summary.DryRun {
		changedLabel = "Would change"
	}

	title := titleStyle.Render("clientguard results")

	summary := summaryStyle.Render(fmt.Sprintf(
		"Scanned: %s  •  %s: %s  •  Insertions: %s  •  Diagnostics: %s  •  Failed: %s",
		accentStyle.Render(fmt.Sprintf("%d", m.summary.Scanned)),
		changedLabel,
		accentStyle.Render(fmt.Sprintf("%d", m.summary.Changed)),
		accentStyle.Render(fmt.Sprintf("%d", m.summary.Insertions)),
		accentStyle.Render(fmt.Sprintf("%d", m.summary.Diagnostics)),
		accentStyle.Render(fmt.Sprintf("%d", m.summary.Failed)),
	))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Align(lipgloss.Center).
		Width(m.width).
		Render("↑/k up • ↓/j down • / filter • enter details • q quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, m.renderResultsBox(accentColor), footer)
}

func (m runModel) renderResultsBox(accentColor lipgloss.Color) string {
	listWidth := max(m.width-4, 20)
	details := m.renderDetailsBox(accentColor, listWidth)

	listHeight := m.height - 9 - lipgloss.Height(details)
	if details == "" || listHeight < 5 {
		listHeight = max(m.height-9, 5)
	}

	m.resultsList.SetHeight(listHeight)
	m.resultsList.SetWidth(listWidth)

	headers := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("8")).
		Width(listWidth).
		Render(fmt.Sprintf("%-10s  %s", "Status", "File"))

	resultsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, headers, m.resultsList.View()))

	if details == "" {
		return resultsBox
	}

	return lipgloss.JoinVertical(lipgloss.Left, resultsBox, details)
}

func (m runModel) renderDetailsBox(accentColor lipgloss.Color, width int) string {
	if !m.showDetails {
		return ""
	}

	item, ok := m.resultsList.SelectedItem().(resultItem)
	if !ok || len(item.details) == 0 {
		return ""
	}

	contentWidth := max(width-4, 10)

	maxLines := min(max(m.height/3, 6), 20)

	lines := item.details
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1:maxLines-1], "…")
	}

	body := make([]string, 0, len(lines)+1)
	body = append(body, lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Render(truncateToWidth(item.path, contentWidth)))

	for _, line := range lines {
		body = append(body, renderPatchLine(line, contentWidth))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Margin(0, 1, 0, 0).
		Padding(0, 1).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, body...))
}

// renderPatchLine colors a unified diff or detail line. A width of zero disables truncation.
func renderPatchLine(line string, width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	switch {
	case strings.HasPrefix(line, "+++"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	case strings.HasPrefix(line, "---"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	case strings.HasPrefix(line, "@@"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	case strings.HasPrefix(line, "+"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case strings.HasPrefix(line, "-"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	case strings.HasPrefix(line, "!"):
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case strings.TrimSpace(line) == "":
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}

	if width > 0 {
		line = truncateToWidth(line, width)
	}

	return style.Render(line)
}
