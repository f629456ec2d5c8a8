package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PathValidator checks an expanded path before the prompt accepts it.
type PathValidator func(path string) error

type pathPromptModel struct {
	title     string
	help      string
	input     textinput.Model
	validate  PathValidator
	value     string
	done      bool
	canceled  bool
	errorText string
}

func newPathPromptModel(title, help, initialPath string, validate PathValidator) pathPromptModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/repository"
	ti.Prompt = "> "
	ti.SetValue(initialPath)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 70

	return pathPromptModel{
		title:    title,
		help:     help,
		input:    ti,
		validate: validate,
	}
}

// expandPath resolves a leading ~ and makes the path absolute.
func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (m pathPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pathPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			m.done = true
			return m, tea.Quit
		case "enter":
			if strings.TrimSpace(m.input.Value()) == "" {
				m.errorText = "Repository path is required."
				return m, nil
			}
			value := expandPath(m.input.Value())
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.errorText = err.Error()
					return m, nil
				}
			}
			m.value = value
			m.done = true
			return m, tea.Quit
		}
		m.errorText = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pathPromptModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n\n")
	if m.errorText != "" {
		b.WriteString(errorStyle.Render("  " + m.errorText))
		b.WriteString("\n\n")
	}
	b.WriteString(dimStyle.Render(m.help))
	b.WriteString("\n")
	return b.String()
}

// RunPathPrompt asks for a path until validate accepts it, and returns it absolute.
func RunPathPrompt(title, help, initialPath string, validate PathValidator) (string, error) {
	model := newPathPromptModel(title, help, initialPath, validate)
	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	result := finalModel.(pathPromptModel)
	if result.canceled {
		return "", fmt.Errorf("prompt canceled")
	}
	return result.value, nil
}
