package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/worklog"
)

var (
	summariesSince string
	summariesUntil string
	summariesFull  bool
)

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "List stored summaries",
	Long: `List summaries saved by 'farmer summarize' and the console, newest first.

Examples:
  farmer summaries --since 2024-01-01
  farmer summaries clear 2024-01-10`,
	RunE: runSummariesList,
}

var summariesClearCmd = &cobra.Command{
	Use:   "clear <date>",
	Short: "Delete the stored summaries of a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		st, err := a.summaries()
		if err != nil {
			return err
		}
		n, err := st.Delete(args[0])
		if err != nil {
			return err
		}
		color.New(color.FgHiGreen).Printf("  Deleted %d summaries for %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summariesCmd)
	summariesCmd.AddCommand(summariesClearCmd)

	summariesCmd.Flags().StringVar(&summariesSince, "since", "", "First day to include (YYYY-MM-DD)")
	summariesCmd.Flags().StringVar(&summariesUntil, "until", "", "Last day to include (YYYY-MM-DD)")
	summariesCmd.Flags().BoolVar(&summariesFull, "full", false, "Print full summary text")
}

func runSummariesList(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dateColor := color.New(color.FgHiWhite, color.Bold)
	dimColor := color.New(color.FgHiBlack)

	a, err := loadApp()
	if err != nil {
		return err
	}
	st, err := a.summaries()
	if err != nil {
		return err
	}
	list, err := st.List(summariesSince, summariesUntil)
	if err != nil {
		return err
	}

	fmt.Println()
	titleColor.Println("  Stored Summaries")
	fmt.Println()
	if len(list) == 0 {
		dimColor.Println("  None yet. Run 'farmer summarize' to generate one.")
		fmt.Println()
		return nil
	}

	for _, s := range list {
		dateColor.Printf("  %s", worklog.FormatLongDate(s.Date))
		dimColor.Printf("  %d commits, %s, %s, %s\n", s.CommitCount, s.ProviderName, s.Verbosity,
			s.CreatedAt.Local().Format("Jan 2 3:04 PM"))
		text := s.Summary
		if !summariesFull {
			text = firstLine(text, 100)
		}
		fmt.Printf("    %s\n\n", strings.ReplaceAll(text, "\n", "\n    "))
	}
	return nil
}

func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-3]) + "..."
	}
	return s
}
