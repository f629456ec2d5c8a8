package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/worklog"
)

// rangeFlags are the date range flags shared by analyze, summarize and export.
type rangeFlags struct {
	preset string
	since  string
	until  string
}

func (f *rangeFlags) register(cmd *cobra.Command, defaultPreset string) {
	cmd.Flags().StringVarP(&f.preset, "range", "r", defaultPreset, "Date range: today, yesterday, this-week, last-week, all")
	cmd.Flags().StringVar(&f.since, "since", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "Last day to include (YYYY-MM-DD)")
}

func (f rangeFlags) parse(now time.Time) (worklog.DateRange, error) {
	return worklog.ParseRange(f.preset, f.since, f.until, now)
}
