package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RepoChoice is one selectable repository.
type RepoChoice struct {
	Path   string
	Name   string
	Active bool
}

// RepoSelection is the result of repository selection.
type RepoSelection struct {
	Active   []string
	Canceled bool
}

// RepoSelectModel is the Bubbletea model for choosing active repositories.
type RepoSelectModel struct {
	repos         []RepoChoice
	cursor        int
	selected      map[string]bool
	viewportStart int
	maxVisible    int
	result        RepoSelection
	done          bool
}

var (
	rsTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Padding(0, 0, 1, 2)
	rsSubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 0, 0, 2)
	rsItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 2)
	rsSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")).
				Padding(0, 0, 0, 2)
	rsCheckedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rsUncheckedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	rsHelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(1, 0, 0, 2)
)

var rsKeys = struct {
	Up    key.Binding
	Down  key.Binding
	Space key.Binding
	Enter key.Binding
	Quit  key.Binding
	All   key.Binding
	None  key.Binding
}{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Space: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "cancel")),
	All:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
	None:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "none")),
}

func NewRepoSelectModel(repos []RepoChoice) RepoSelectModel {
	selected := make(map[string]bool)
	for _, r := range repos {
		if r.Active {
			selected[r.Path] = true
		}
	}
	return RepoSelectModel{
		repos:      repos,
		selected:   selected,
		maxVisible: 12,
	}
}

func (m RepoSelectModel) Init() tea.Cmd {
	return nil
}

func (m *RepoSelectModel) ensureCursorVisible() {
	if m.cursor < m.viewportStart {
		m.viewportStart = m.cursor
	}
	if m.cursor >= m.viewportStart+m.maxVisible {
		m.viewportStart = m.cursor - m.maxVisible + 1
	}
}

// activePaths keeps the original order of the list.
func (m RepoSelectModel) activePaths() []string {
	out := []string{}
	for _, r := range m.repos {
		if m.selected[r.Path] {
			out = append(out, r.Path)
		}
	}
	return out
}

func (m RepoSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.maxVisible = min(12, msg.Height-8)
		if m.maxVisible < 3 {
			m.maxVisible = 3
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, rsKeys.Quit):
			m.result.Canceled = true
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, rsKeys.Enter):
			m.result.Active = m.activePaths()
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, rsKeys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.ensureCursorVisible()
			}

		case key.Matches(msg, rsKeys.Down):
			if m.cursor < len(m.repos)-1 {
				m.cursor++
				m.ensureCursorVisible()
			}

		case key.Matches(msg, rsKeys.Space):
			if m.cursor < len(m.repos) {
				path := m.repos[m.cursor].Path
				m.selected[path] = !m.selected[path]
			}

		case key.Matches(msg, rsKeys.All):
			for _, r := range m.repos {
				m.selected[r.Path] = true
			}

		case key.Matches(msg, rsKeys.None):
			m.selected = make(map[string]bool)
		}
	}

	return m, nil
}

func (m RepoSelectModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(rsTitleStyle.Render("Select repositories to analyze"))
	b.WriteString("\n")
	b.WriteString(rsSubtitleStyle.Render(fmt.Sprintf("%d selected", len(m.activePaths()))))
	b.WriteString("\n\n")

	if len(m.repos) == 0 {
		b.WriteString(rsSubtitleStyle.Render("  No recent repositories"))
		b.WriteString("\n")
		return b.String()
	}

	start := m.viewportStart
	end := min(start+m.maxVisible, len(m.repos))

	for i := start; i < end; i++ {
		r := m.repos[i]
		cursor := "  "
		if m.cursor == i {
			cursor = "▸ "
		}
		box := rsUncheckedStyle.Render("[ ]")
		if m.selected[r.Path] {
			box = rsCheckedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s  %s", cursor, box, r.Name, dimStyle.Render(r.Path))
		if m.cursor == i {
			b.WriteString(rsSelectedItemStyle.Render(line))
		} else {
			b.WriteString(rsItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(rsHelpStyle.Render(
		rsKeys.Space.Help().Key + " toggle  " +
			rsKeys.All.Help().Key + " all  " +
			rsKeys.None.Help().Key + " none  " +
			rsKeys.Enter.Help().Key + " confirm  " +
			rsKeys.Quit.Help().Key + " cancel"))

	return b.String()
}

func (m RepoSelectModel) Result() RepoSelection {
	return m.result
}

// RunRepoSelection lets the user toggle which repositories are active.
func RunRepoSelection(repos []RepoChoice) (*RepoSelection, error) {
	model := NewRepoSelectModel(repos)
	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	result := finalModel.(RepoSelectModel).Result()
	if result.Canceled {
		return nil, fmt.Errorf("repository selection canceled")
	}
	return &result, nil
}
