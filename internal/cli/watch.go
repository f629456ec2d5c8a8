package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/worklog"
)

var (
	watchRange    rangeFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh the timeline whenever the current repository changes",
	Long: `Watch the current repository's HEAD and refs and print the timeline again after
each commit, checkout or pull. Only works when exactly one repository is selected.

Press Ctrl+C to stop.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchRange.register(watchCmd, "today")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", worklog.DefaultDebounce, "Wait this long for changes to settle")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dimColor := color.New(color.FgHiBlack)

	a, err := loadApp()
	if err != nil {
		return err
	}

	refresh := func(ctx context.Context) error {
		days, _, res, err := a.timeline(ctx, watchRange)
		if err != nil {
			return err
		}
		printFailures(res.Failures)
		printTimeline(days, false)
		return nil
	}

	if err := refresh(ctx); err != nil {
		return err
	}

	repo := a.aggregator.CurrentRepo()
	if repo == "" {
		return fmt.Errorf("watch needs exactly one repository; %d are active\n\nRun 'farmer repos use <path>' to pick one", len(a.settings.Repos()))
	}

	dimColor.Printf("  Watching %s (Ctrl+C to stop)\n\n", repo)
	w := worklog.NewRepoWatcher(repo, watchDebounce, a.log)
	return w.Run(ctx, func() {
		dimColor.Printf("  Change detected at %s\n", time.Now().Format("3:04:05 PM"))
		if err := refresh(ctx); err != nil && ctx.Err() == nil {
			color.New(color.FgHiRed).Printf("  Error: %v\n", err)
		}
	})
}
