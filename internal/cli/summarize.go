package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ishaan812/farmer/internal/db"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/worklog"
)

var (
	summarizeRange    rangeFlags
	summarizeAll      bool
	summarizeCached   bool
	summarizeNoStream bool
	summarizeCopy     bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [date]",
	Short: "Generate an AI summary of a work day",
	Long: `Generate a first-person summary of the commits made on a day using the
selected AI backend. Without a date the most recent work day is summarized.

Summaries are stored and reused with --cached as long as the day's commits
have not changed. Press Ctrl+C to cancel a running generation.

Examples:
  farmer summarize                       # Latest work day, streamed
  farmer summarize 2024-01-10            # A specific day
  farmer summarize --all -r this-week    # Every day of this week
  farmer summarize --cached --copy       # Reuse stored summary, copy to clipboard`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeRange.register(summarizeCmd, "all")
	summarizeCmd.Flags().BoolVar(&summarizeAll, "all", false, "Summarize every work day in the range")
	summarizeCmd.Flags().BoolVar(&summarizeCached, "cached", false, "Reuse a stored summary when the commits are unchanged")
	summarizeCmd.Flags().BoolVar(&summarizeNoStream, "no-stream", false, "Wait for the full summary instead of streaming")
	summarizeCmd.Flags().BoolVar(&summarizeCopy, "copy", false, "Copy the summary and commit links to the clipboard")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}

	days, _, res, err := a.timeline(ctx, summarizeRange)
	if err != nil {
		return err
	}
	printFailures(res.Failures)

	targets, err := pickDays(days, args)
	if err != nil {
		return err
	}

	st, err := a.summaries()
	if err != nil {
		return err
	}

	for _, day := range targets {
		if err := summarizeDay(ctx, a, st, day); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

func pickDays(days []git.WorkDay, args []string) ([]git.WorkDay, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("no work days found in the selected range")
	}
	if len(args) == 1 {
		day, ok := worklog.FindDay(days, args[0])
		if !ok {
			return nil, fmt.Errorf("no commits found on %s", args[0])
		}
		return []git.WorkDay{day}, nil
	}
	if summarizeAll {
		return days, nil
	}
	return days[:1], nil
}

func summarizeDay(ctx context.Context, a *app, st *db.SummaryStore, day git.WorkDay) error {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dimColor := color.New(color.FgHiBlack)
	successColor := color.New(color.FgHiGreen)

	fmt.Println()
	titleColor.Printf("  %s\n", worklog.FormatLongDate(day.Date))
	dimColor.Printf("  %d commits\n\n", day.TotalCommits)

	if summarizeCached {
		stored, err := st.ForDay(day)
		if err != nil {
			return err
		}
		if stored != nil {
			VerboseLog("Using stored summary from %s", stored.CreatedAt.Format(time.RFC3339))
			fmt.Println(stored.Summary)
			return finishSummary(a, day, stored.Summary)
		}
	}

	var (
		text string
		err  error
	)
	if summarizeNoStream {
		text, err = generateBuffered(ctx, a, day)
	} else {
		text, err = generateStreaming(ctx, a, day)
	}
	if err != nil {
		return err
	}
	if text == "" {
		dimColor.Printf("\n  %s\n", emptyResultNote(ctx))
		return nil
	}

	if err := a.record(st, day, text); err != nil {
		VerboseLog("Warning: failed to store summary: %v", err)
	} else {
		successColor.Println("\n  Summary saved")
	}
	return finishSummary(a, day, text)
}

// emptyResultNote tells a cancelled generation apart from a backend that produced no text.
func emptyResultNote(ctx context.Context) string {
	if ctx.Err() != nil {
		return "Cancelled"
	}
	return "The backend returned an empty summary"
}

func newSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = suffix
	s.Color("cyan")
	return s
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func generateBuffered(ctx context.Context, a *app, day git.WorkDay) (string, error) {
	s := newSpinner(" Generating summary...")
	if interactive() {
		s.Start()
	}
	h, err := a.pipeline().Start(ctx, a.request(day.Commits))
	if err != nil {
		s.Stop()
		return "", err
	}

	select {
	case <-h.Done():
	case <-ctx.Done():
		// the backend process may still be running; its output is discarded
		h.Cancel()
		s.Stop()
		return "", nil
	}
	s.Stop()

	text, err := h.Wait()
	if err != nil {
		return "", err
	}
	if text != "" {
		fmt.Println(text)
	}
	return text, nil
}

func generateStreaming(ctx context.Context, a *app, day git.WorkDay) (string, error) {
	s := newSpinner(" Generating summary...")
	if interactive() {
		s.Start()
	}
	var once sync.Once
	stop := func() { once.Do(s.Stop) }
	defer stop()

	h, err := a.pipeline().Stream(ctx, a.request(day.Commits), func(chunk string) {
		stop()
		fmt.Print(chunk)
	})
	if err != nil {
		return "", err
	}

	text, err := h.Wait()
	stop()
	if err != nil {
		return "", err
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}
	return text, nil
}

func finishSummary(a *app, day git.WorkDay, text string) error {
	if !summarizeCopy {
		return nil
	}
	return copyText(worklog.SummaryCopyText(day, text, a.settings.CopySettings))
}

func copyText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		VerboseLog("Clipboard unavailable: %v", err)
		fmt.Println()
		fmt.Println(text)
		return nil
	}
	color.New(color.FgHiGreen).Println("  Copied to clipboard")
	return nil
}
