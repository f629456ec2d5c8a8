package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ishaan812/farmer/internal/db"
	"github.com/ishaan812/farmer/internal/generation"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/llm"
	"github.com/ishaan812/farmer/internal/summarizer"
	"github.com/ishaan812/farmer/internal/tui"
)

var consoleRange rangeFlags

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console to browse work days and generate summaries",
	Long: `Opens a full-screen terminal UI listing your work days.

Keys:
  enter   show the day's commits and summary
  s       stream a new summary for the day
  c       cancel the running summary
  r       regenerate (cancel and start again)
  q       quit

Several days can be generating at once; a day that is already generating
will not start a second generation.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleRange.register(consoleCmd, "all")
}

// consoleGenerator streams summaries through the pipeline with the current settings.
type consoleGenerator struct {
	app      *app
	pipeline *summarizer.Pipeline
}

func (g consoleGenerator) Stream(ctx context.Context, commits []git.Commit, onChunk llm.ChunkFunc) (*llm.Handle, error) {
	return g.pipeline.Stream(ctx, g.app.request(commits), onChunk)
}

// consoleStore reads and writes the summary database.
type consoleStore struct {
	app *app
	st  *db.SummaryStore
}

func (s consoleStore) Lookup(day git.WorkDay) (string, bool) {
	stored, err := s.st.ForDay(day)
	if err != nil {
		VerboseLog("Warning: failed to read stored summary: %v", err)
		return "", false
	}
	if stored == nil {
		return "", false
	}
	return stored.Summary, true
}

func (s consoleStore) Store(day git.WorkDay, text string) error {
	return s.app.record(s.st, day, text)
}

func runConsole(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("console requires an interactive terminal")
	}
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}

	s := newSpinner(" Reading commit history...")
	s.Start()
	days, _, res, err := a.timeline(ctx, consoleRange)
	s.Stop()
	if err != nil {
		return err
	}
	printFailures(res.Failures)

	st, err := a.summaries()
	if err != nil {
		return err
	}

	names := make([]string, 0)
	for _, r := range a.settings.Repos() {
		names = append(names, git.RepoName(r))
	}

	gen := consoleGenerator{app: a, pipeline: a.pipeline()}
	store := consoleStore{app: a, st: st}
	return tui.RunConsole(ctx, days, strings.Join(names, ", "), gen, store, generation.NewRegistry())
}
