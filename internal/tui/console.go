package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ishaan812/farmer/internal/generation"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/llm"
	"github.com/ishaan812/farmer/internal/worklog"
)

// Generator starts a streaming summary of commits.
type Generator interface {
	Stream(ctx context.Context, commits []git.Commit, onChunk llm.ChunkFunc) (*llm.Handle, error)
}

// SummaryStore looks up and records finished summaries.
type SummaryStore interface {
	Lookup(day git.WorkDay) (string, bool)
	Store(day git.WorkDay, text string) error
}

// ── Styles ─────────────────────────────────────────────────────────────────

var (
	activeBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("86"))

	inactiveBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("241"))

	consoleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	consoleInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	consoleSectionTitle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				Padding(0, 1)

	consoleCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")).
				Bold(true)

	consoleItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	consoleDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	consoleStatStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	consoleHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	consoleHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				Padding(0, 1)

	consoleScrollStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Align(lipgloss.Right)
)

// ── Messages ───────────────────────────────────────────────────────────────

type chunkMsg struct {
	date  string
	gen   int
	chunk string
}

type generationDoneMsg struct {
	date   string
	gen    int
	handle *llm.Handle
	text   string
	err    error
}

// waitForEvent delivers the next message of a generation; nil once it is drained.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{msg: msg, ch: ch}
	}
}

// eventMsg wraps a generation message together with its channel so Update can keep reading.
type eventMsg struct {
	msg tea.Msg
	ch  <-chan tea.Msg
}

// ── Model ──────────────────────────────────────────────────────────────────

// ConsoleModel is the Bubbletea model for the work day console.
type ConsoleModel struct {
	width  int
	height int

	ctx      context.Context
	stop     context.CancelFunc
	days     []git.WorkDay
	repos    string
	gen      Generator
	store    SummaryStore
	registry *generation.Registry

	cursor int
	scroll int

	summaries map[string]string
	streams   map[string]*strings.Builder
	genIDs    map[string]int
	nextGen   int

	selected     int
	viewport     viewport.Model
	contentReady bool
	spinner      spinner.Model
	spinning     bool
	status       string
	statusErr    bool

	quitting bool
}

// NewConsoleModel creates a console over days. repos is shown in the title bar.
func NewConsoleModel(ctx context.Context, days []git.WorkDay, repos string, gen Generator, store SummaryStore, registry *generation.Registry) ConsoleModel {
	ctx, stop := context.WithCancel(ctx)
	if registry == nil {
		registry = generation.NewRegistry()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = consoleCursorStyle

	summaries := make(map[string]string)
	if store != nil {
		for _, d := range days {
			if text, ok := store.Lookup(d); ok {
				summaries[d.Date] = text
			}
		}
	}

	return ConsoleModel{
		ctx:       ctx,
		stop:      stop,
		days:      days,
		repos:     repos,
		gen:       gen,
		store:     store,
		registry:  registry,
		summaries: summaries,
		streams:   make(map[string]*strings.Builder),
		genIDs:    make(map[string]int),
		selected:  -1,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
	}
}

func (m ConsoleModel) Init() tea.Cmd {
	return nil
}

// ── Update ─────────────────────────────────────────────────────────────────

func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		return m, nil

	case eventMsg:
		m.handleEvent(msg.msg)
		return m, waitForEvent(msg.ch)

	case spinner.TickMsg:
		if len(m.registry.Keys()) == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ConsoleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		for _, k := range m.registry.Keys() {
			m.registry.Cancel(k)
		}
		m.stop()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(m.days)-1 {
			m.cursor++
			m.ensureVisible()
		}
		return m, nil

	case "enter":
		if m.cursor < len(m.days) {
			m.selected = m.cursor
			m.status = ""
			m.loadContent(true)
		}
		return m, nil

	case "s":
		cmd := m.startGeneration()
		return m, cmd

	case "c":
		m.cancelGeneration()
		return m, nil

	case "r":
		day, ok := m.cursorDay()
		if !ok {
			return m, nil
		}
		m.registry.Cancel(day.Date)
		cmd := m.startGeneration()
		return m, cmd

	case "pgup", "pgdown":
		if m.contentReady {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case "ctrl+u":
		if m.contentReady {
			m.viewport.HalfViewUp()
		}
		return m, nil

	case "ctrl+d":
		if m.contentReady {
			m.viewport.HalfViewDown()
		}
		return m, nil
	}
	return m, nil
}

func (m *ConsoleModel) cursorDay() (git.WorkDay, bool) {
	if m.cursor < 0 || m.cursor >= len(m.days) {
		return git.WorkDay{}, false
	}
	return m.days[m.cursor], true
}

func (m *ConsoleModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// startGeneration streams a summary for the day under the cursor. A day that is already
// generating is left alone.
func (m *ConsoleModel) startGeneration() tea.Cmd {
	day, ok := m.cursorDay()
	if !ok || m.gen == nil {
		return nil
	}
	if m.registry.IsGenerating(day.Date) {
		m.setStatus("Already generating a summary for "+worklog.FormatLongDate(day.Date), false)
		return nil
	}

	m.nextGen++
	id := m.nextGen
	ch := make(chan tea.Msg, 64)
	ctx := m.ctx

	send := func(msg tea.Msg) {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	}

	h, err := m.gen.Stream(ctx, day.Commits, func(chunk string) {
		send(chunkMsg{date: day.Date, gen: id, chunk: chunk})
	})
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}

	m.registry.Register(day.Date, h)
	m.genIDs[day.Date] = id
	m.streams[day.Date] = &strings.Builder{}
	m.selected = m.cursor
	m.setStatus("Generating summary...", false)
	m.loadContent(true)

	go func() {
		text, err := h.Wait()
		send(generationDoneMsg{date: day.Date, gen: id, handle: h, text: text, err: err})
		close(ch)
	}()

	cmds := []tea.Cmd{waitForEvent(ch)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *ConsoleModel) cancelGeneration() {
	day, ok := m.cursorDay()
	if !ok {
		return
	}
	if m.registry.Cancel(day.Date) {
		delete(m.genIDs, day.Date)
		delete(m.streams, day.Date)
		m.setStatus("Cancelled", false)
		m.refreshIfShowing(day.Date)
		return
	}
	m.setStatus("Nothing to cancel", false)
}

func (m *ConsoleModel) handleEvent(msg tea.Msg) {
	switch ev := msg.(type) {
	case chunkMsg:
		if m.genIDs[ev.date] != ev.gen {
			return
		}
		if b := m.streams[ev.date]; b != nil {
			b.WriteString(ev.chunk)
		}
		m.refreshIfShowing(ev.date)

	case generationDoneMsg:
		m.registry.UnregisterIf(ev.date, ev.handle)
		if m.genIDs[ev.date] != ev.gen {
			return
		}
		delete(m.genIDs, ev.date)
		delete(m.streams, ev.date)

		switch {
		case ev.err != nil:
			m.setStatus(ev.err.Error(), true)
		case ev.text == "":
			m.setStatus("Cancelled", false)
		default:
			m.summaries[ev.date] = ev.text
			m.setStatus("Summary ready", false)
			if m.store != nil {
				if day, ok := worklog.FindDay(m.days, ev.date); ok {
					if err := m.store.Store(day, ev.text); err != nil {
						m.setStatus("Summary ready, but saving failed: "+err.Error(), true)
					}
				}
			}
		}
		m.refreshIfShowing(ev.date)
	}
}

func (m *ConsoleModel) refreshIfShowing(date string) {
	if m.selected >= 0 && m.selected < len(m.days) && m.days[m.selected].Date == date {
		m.loadContent(false)
	}
}

// ── Helpers ────────────────────────────────────────────────────────────────

func (m *ConsoleModel) leftPanelWidth() int {
	w := m.width * 30 / 100
	if w < 28 {
		w = 28
	}
	if w > 45 {
		w = 45
	}
	return w
}

func (m *ConsoleModel) updateViewportSize() {
	leftW := m.leftPanelWidth()
	rightW := m.width - leftW - 5
	if rightW < 20 {
		rightW = 20
	}
	vpHeight := m.height - 6
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport.Width = rightW
	m.viewport.Height = vpHeight

	if m.contentReady && m.selected >= 0 {
		m.loadContent(false)
	}
}

func (m *ConsoleModel) maxVisible() int {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}

func (m *ConsoleModel) ensureVisible() {
	maxVis := m.maxVisible()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+maxVis {
		m.scroll = m.cursor - maxVis + 1
	}
}

func (m *ConsoleModel) loadContent(top bool) {
	if m.selected < 0 || m.selected >= len(m.days) {
		return
	}
	day := m.days[m.selected]

	summary, streaming := m.summaries[day.Date], false
	if b, ok := m.streams[day.Date]; ok {
		summary, streaming = b.String(), true
	}
	md := renderDayMarkdown(day, summary, streaming)

	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	var rendered string
	if err == nil {
		rendered, err = renderer.Render(md)
	}
	if err != nil {
		rendered = md
	}

	atBottom := m.viewport.AtBottom()
	m.contentReady = true
	m.viewport.SetContent(rendered)
	switch {
	case top:
		m.viewport.GotoTop()
	case streaming && atBottom:
		m.viewport.GotoBottom()
	}
}

func renderDayMarkdown(day git.WorkDay, summary string, streaming bool) string {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("# %s\n\n", worklog.FormatLongDate(day.Date)))
	md.WriteString(fmt.Sprintf("**%d commits** · %s - %s\n\n",
		day.TotalCommits, day.FirstCommitTime, day.LastCommitTime))

	md.WriteString("## Summary\n\n")
	switch {
	case streaming && summary == "":
		md.WriteString("_Generating..._\n\n")
	case streaming:
		md.WriteString(summary)
		md.WriteString(" ▌\n\n")
	case summary != "":
		md.WriteString(summary)
		md.WriteString("\n\n")
	default:
		md.WriteString("_No summary yet. Press **s** to generate one._\n\n")
	}

	md.WriteString("## Commits\n\n")
	for _, c := range day.Commits {
		md.WriteString(fmt.Sprintf("- `%s` %s **%s** %s\n", c.ShortHash(), git.FormatClock(c.Timestamp), c.RepoName, c.Subject()))
	}
	return md.String()
}

// ── View ───────────────────────────────────────────────────────────────────

func (m ConsoleModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderLeftPanel(), m.renderRightPanel()))
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m ConsoleModel) fillBar(left, right string) string {
	spacerLen := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerLen < 0 {
		spacerLen = 0
	}
	spacer := lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Render(strings.Repeat(" ", spacerLen))
	return left + spacer + right
}

func (m ConsoleModel) renderTitleBar() string {
	title := consoleTitleStyle.Render("  Farmer Console")
	info := consoleInfoStyle.Render(m.repos + "  ")
	return m.fillBar(title, info)
}

func (m ConsoleModel) renderLeftPanel() string {
	leftW := m.leftPanelWidth()
	innerW := leftW - 2

	var b strings.Builder
	b.WriteString(consoleSectionTitle.Render("Work Days"))
	b.WriteString("\n")
	b.WriteString(consoleDimStyle.Render(" " + strings.Repeat("─", innerW-2)))
	b.WriteString("\n")

	if len(m.days) == 0 {
		b.WriteString(consoleDimStyle.Render(" No commits found"))
		b.WriteString("\n")
	}

	maxVis := m.maxVisible()
	start := m.scroll
	end := min(start+maxVis, len(m.days))

	if start > 0 {
		b.WriteString(consoleDimStyle.Render(" ↑ more"))
		b.WriteString("\n")
	}

	for i := start; i < end; i++ {
		d := m.days[i]
		isCursor := i == m.cursor

		cursor := "  "
		if isCursor {
			cursor = "> "
		}

		label := worklog.FormatLongDate(d.Date)
		if t, err := parseDate(d.Date); err == nil {
			label = t.Format("Mon, Jan 2")
		}

		marker := " "
		switch {
		case m.registry.IsGenerating(d.Date):
			marker = m.spinner.View()
		case m.summaries[d.Date] != "":
			marker = successStyle.Render("●")
		}

		var line string
		switch {
		case isCursor:
			line = consoleCursorStyle.Render(cursor + label)
		case i == m.selected:
			line = consoleItemStyle.Bold(true).Render(cursor + label)
		default:
			line = consoleItemStyle.Render(cursor + label)
		}
		stats := consoleStatStyle.Render(fmt.Sprintf(" %d", d.TotalCommits))

		b.WriteString(line + stats + " " + marker)
		b.WriteString("\n")
	}

	if end < len(m.days) {
		b.WriteString(consoleDimStyle.Render(" ↓ more"))
		b.WriteString("\n")
	}

	return activeBorderStyle.
		Width(leftW).
		Height(m.height - 3).
		Render(b.String())
}

func (m ConsoleModel) renderRightPanel() string {
	leftW := m.leftPanelWidth()
	rightW := m.width - leftW - 3
	if rightW < 20 {
		rightW = 20
	}

	var content string
	if !m.contentReady {
		content = consoleDimStyle.Italic(true).Padding(1, 2).Render("Select a day and press enter to see its commits.")
	} else {
		header := consoleHeaderStyle.Render(worklog.FormatLongDate(m.days[m.selected].Date))
		divider := consoleDimStyle.Render(" " + strings.Repeat("─", rightW-4))

		content = header + "\n" + divider + "\n" + m.viewport.View()
		if m.viewport.TotalLineCount() > m.viewport.Height {
			pct := int(m.viewport.ScrollPercent() * 100)
			content += "\n" + consoleScrollStyle.Width(rightW-4).Render(fmt.Sprintf("%d%%", pct))
		}
	}

	return inactiveBorderStyle.
		Width(rightW).
		Height(m.height - 3).
		Render(content)
}

func (m ConsoleModel) renderHelpBar() string {
	help := consoleHelpStyle.Render("  ↑/↓ navigate  enter view  s summarize  c cancel  r regenerate  pgup/pgdn scroll  q quit")
	status := ""
	if m.status != "" {
		style := consoleInfoStyle
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("196"))
		}
		status = style.Render(m.status + "  ")
	}
	return m.fillBar(help, status)
}

// ── Runner ─────────────────────────────────────────────────────────────────

// RunConsole launches the full-screen console.
func RunConsole(ctx context.Context, days []git.WorkDay, repos string, gen Generator, store SummaryStore, registry *generation.Registry) error {
	model := NewConsoleModel(ctx, days, repos, gen, store, registry)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
