package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/worklog"
)

var (
	analyzeRange  rangeFlags
	analyzeFormat string
	analyzeFiles  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show your commits grouped into work days",
	Long: `Analyze the selected repositories and print your commits grouped by day,
newest first. Only the last 90 days of history are read.

When author filtering is on (see 'farmer authors'), only commits whose author
name or email contains one of the configured authors are shown.

Examples:
  farmer analyze                      # All days
  farmer analyze --range this-week    # Monday to Sunday of this week
  farmer analyze --since 2024-01-01   # From a given day
  farmer analyze --format json        # Machine readable output`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeRange.register(analyzeCmd, "all")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "Output format: md, json, yaml (default: colored timeline)")
	analyzeCmd.Flags().BoolVar(&analyzeFiles, "files", false, "List changed files for each commit")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s := newSpinner(" Reading history...")
	showProgress := analyzeFormat == "" && interactive()

	a, err := loadApp(git.WithProgress(func(repoPath string, processed, total int) {
		s.Lock()
		s.Suffix = progressSuffix(repoPath, processed, total)
		s.Unlock()
	}))
	if err != nil {
		return err
	}

	if showProgress {
		s.Start()
	}
	days, r, res, err := a.timeline(ctx, analyzeRange)
	s.Stop()
	if err != nil {
		return err
	}

	if analyzeFormat != "" {
		format, err := worklog.ParseFormat(analyzeFormat)
		if err != nil {
			return err
		}
		rep := worklog.NewReport(a.author(), days, nil, r, time.Now())
		return rep.Write(os.Stdout, format)
	}

	printFailures(res.Failures)
	printTimeline(days, analyzeFiles)
	return nil
}

func progressSuffix(repoPath string, processed, total int) string {
	return fmt.Sprintf(" Reading %s (%d/%d commits)...", filepath.Base(repoPath), processed, total)
}

func printFailures(failures []worklog.RepoFailure) {
	if len(failures) == 0 {
		return
	}
	warnColor := color.New(color.FgHiYellow)
	dimColor := color.New(color.FgHiBlack)
	fmt.Println()
	for _, f := range failures {
		warnColor.Printf("  Skipped %s\n", f.Path)
		dimColor.Printf("    %v\n", f.Err)
	}
}

func printTimeline(days []git.WorkDay, withFiles bool) {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dateColor := color.New(color.FgHiWhite, color.Bold)
	hashColor := color.New(color.FgYellow)
	repoColor := color.New(color.FgHiMagenta)
	dimColor := color.New(color.FgHiBlack)

	fmt.Println()
	titleColor.Println("  Work Days")
	fmt.Println()

	if len(days) == 0 {
		dimColor.Println("  No commits found in the selected range.")
		fmt.Println()
		return
	}

	total := 0
	for _, day := range days {
		total += day.TotalCommits
		dateColor.Printf("  %s", worklog.FormatLongDate(day.Date))
		dimColor.Printf("  %d commits, %s - %s\n",
			day.TotalCommits, day.FirstCommitTime, day.LastCommitTime)

		for _, c := range day.Commits {
			fmt.Print("    ")
			hashColor.Print(c.ShortHash())
			fmt.Printf(" %s ", git.FormatClock(c.Timestamp))
			repoColor.Printf("[%s] ", c.RepoName)
			fmt.Println(c.Subject())
			if withFiles {
				for _, f := range c.FilesChanged {
					dimColor.Printf("        %s\n", f)
				}
			}
		}
		fmt.Println()
	}
	dimColor.Printf("  %d commits across %d days\n\n", total, len(days))
}
