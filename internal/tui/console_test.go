package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishaan812/farmer/internal/generation"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/llm"
)

type fakeGenerator struct {
	chunks []string
	block  chan struct{}
	err    error

	mu    sync.Mutex
	calls int
}

func (f *fakeGenerator) Stream(ctx context.Context, _ []git.Commit, onChunk llm.ChunkFunc) (*llm.Handle, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return llm.Start(ctx, func(ctx context.Context) (string, error) {
		var b strings.Builder
		for _, c := range f.chunks {
			onChunk(c)
			b.WriteString(c)
		}
		if f.block != nil {
			select {
			case <-f.block:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return b.String(), nil
	}), nil
}

type fakeStore struct {
	stored map[string]string
	saved  []string
}

func (f *fakeStore) Lookup(day git.WorkDay) (string, bool) {
	s, ok := f.stored[day.Date]
	return s, ok
}

func (f *fakeStore) Store(day git.WorkDay, text string) error {
	f.saved = append(f.saved, day.Date+": "+text)
	return nil
}

func testDays() []git.WorkDay {
	ts := time.Date(2024, 1, 10, 9, 5, 0, 0, time.Local)
	return []git.WorkDay{
		git.NewWorkDay("2024-01-10", []git.Commit{{Hash: "a1b2c3d4e5", Message: "fix login", Timestamp: ts, RepoName: "app"}}),
		git.NewWorkDay("2024-01-09", []git.Commit{{Hash: "f6e5d4c3b2", Message: "add tests", Timestamp: ts.AddDate(0, 0, -1), RepoName: "app"}}),
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestConsole(gen Generator, store SummaryStore) (ConsoleModel, *generation.Registry) {
	reg := generation.NewRegistry()
	m := NewConsoleModel(context.Background(), testDays(), "app", gen, store, reg)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(ConsoleModel), reg
}

func press(m ConsoleModel, k string) (ConsoleModel, tea.Cmd) {
	next, cmd := m.Update(keyPress(k))
	return next.(ConsoleModel), cmd
}

// drain runs cmd and every command it produces, feeding messages back into the model.
func drain(t *testing.T, m ConsoleModel, cmd tea.Cmd) ConsoleModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(ConsoleModel)
			queue = append(queue, nc)
		}
	}
	return m
}

func TestConsoleLoadsStoredSummaries(t *testing.T) {
	store := &fakeStore{stored: map[string]string{"2024-01-09": "I wrote tests."}}
	m, _ := newTestConsole(&fakeGenerator{}, store)

	assert.Equal(t, "I wrote tests.", m.summaries["2024-01-09"])
	assert.NotContains(t, m.summaries, "2024-01-10")
}

func TestConsoleStreamsAndStoresSummary(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{chunks: []string{"I fixed ", "the login."}}
	m, reg := newTestConsole(gen, store)

	m, cmd := press(m, "s")
	require.NotNil(t, cmd)
	assert.True(t, reg.IsGenerating("2024-01-10"))

	m = drain(t, m, cmd)

	assert.False(t, reg.IsGenerating("2024-01-10"))
	assert.Equal(t, "I fixed the login.", m.summaries["2024-01-10"])
	assert.Equal(t, []string{"2024-01-10: I fixed the login."}, store.saved)
	assert.Equal(t, "Summary ready", m.status)
	assert.Empty(t, m.streams)
}

func TestConsoleRefusesSecondGenerationForSameDay(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"partial"}, block: make(chan struct{})}
	m, reg := newTestConsole(gen, &fakeStore{})

	m, first := press(m, "s")
	require.NotNil(t, first)

	m, second := press(m, "s")
	assert.Nil(t, second)
	assert.Contains(t, m.status, "Already generating")
	assert.Equal(t, 1, gen.calls)

	m, _ = press(m, "c")
	assert.False(t, reg.IsGenerating("2024-01-10"))
	assert.Equal(t, "Cancelled", m.status)

	m = drain(t, m, first)
	assert.NotContains(t, m.summaries, "2024-01-10")
	assert.Equal(t, "Cancelled", m.status)
}

func TestConsoleCancelWithoutGeneration(t *testing.T) {
	m, _ := newTestConsole(&fakeGenerator{}, nil)
	m, _ = press(m, "c")
	assert.Equal(t, "Nothing to cancel", m.status)
}

func TestConsoleRegenerateReplacesInFlightGeneration(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"done"}, block: make(chan struct{})}
	store := &fakeStore{}
	m, reg := newTestConsole(gen, store)

	m, first := press(m, "s")
	m, second := press(m, "r")
	require.NotNil(t, second)
	assert.Equal(t, 2, gen.calls)
	assert.True(t, reg.IsGenerating("2024-01-10"))

	// the first generation was cancelled and its result is ignored
	m = drain(t, m, first)
	assert.True(t, reg.IsGenerating("2024-01-10"))
	assert.NotContains(t, m.summaries, "2024-01-10")

	close(gen.block)
	m = drain(t, m, second)
	assert.False(t, reg.IsGenerating("2024-01-10"))
	assert.Equal(t, "done", m.summaries["2024-01-10"])
	assert.Len(t, store.saved, 1)
}

func TestConsoleStartErrorShowsStatus(t *testing.T) {
	m, reg := newTestConsole(&fakeGenerator{err: llm.ErrNoProviderSelected}, nil)
	m, cmd := press(m, "s")
	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, llm.ErrNoProviderSelected.Error())
	assert.Empty(t, reg.Keys())
}

func TestConsoleGenerationErrorShowsStatus(t *testing.T) {
	gen := &errGenerator{err: errors.New("claude exited with code 1: boom")}
	m, _ := newTestConsole(gen, &fakeStore{})
	m, cmd := press(m, "s")
	m = drain(t, m, cmd)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "boom")
}

type errGenerator struct{ err error }

func (e *errGenerator) Stream(ctx context.Context, _ []git.Commit, _ llm.ChunkFunc) (*llm.Handle, error) {
	return llm.Start(ctx, func(context.Context) (string, error) { return "", e.err }), nil
}

func TestConsoleQuitCancelsGenerations(t *testing.T) {
	gen := &fakeGenerator{block: make(chan struct{})}
	m, reg := newTestConsole(gen, nil)
	m, _ = press(m, "s")
	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Empty(t, reg.Keys())
	assert.Equal(t, "", m.View())
}

func TestConsoleNavigationAndView(t *testing.T) {
	m, _ := newTestConsole(&fakeGenerator{}, nil)
	m, _ = press(m, "j")
	assert.Equal(t, 1, m.cursor)
	m, _ = press(m, "j")
	assert.Equal(t, 1, m.cursor)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ConsoleModel)
	assert.Equal(t, 1, m.selected)
	assert.True(t, m.contentReady)
	assert.Contains(t, m.View(), "Farmer Console")
}

func TestRenderDayMarkdown(t *testing.T) {
	day := testDays()[0]

	md := renderDayMarkdown(day, "", false)
	assert.Contains(t, md, "# Wednesday, January 10, 2024")
	assert.Contains(t, md, "Press **s** to generate one")
	assert.Contains(t, md, "- `a1b2c3d` 9:05 AM **app** fix login")

	md = renderDayMarkdown(day, "I fixed", true)
	assert.Contains(t, md, "I fixed ▌")

	md = renderDayMarkdown(day, "I fixed the login.", false)
	assert.Contains(t, md, "I fixed the login.\n")
}

func TestRepoSelectToggles(t *testing.T) {
	m := NewRepoSelectModel([]RepoChoice{
		{Path: "/a", Name: "a", Active: true},
		{Path: "/b", Name: "b"},
	})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"/a", "/b"}, next.(RepoSelectModel).Result().Active)

	next, _ = NewRepoSelectModel([]RepoChoice{{Path: "/a", Active: true}}).Update(keyPress("n"))
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, next.(RepoSelectModel).Result().Active)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, home+"/src", expandPath("~/src"))
	assert.Equal(t, "/tmp/x", expandPath(" /tmp/x "))
}
