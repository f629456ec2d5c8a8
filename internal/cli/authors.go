package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Manage the git authors counted as you",
	Long: `Show or change the author names and emails used to filter commits.

A commit matches when its author name or email contains one of the entries,
ignoring case. With an empty list or with filtering off, every commit counts.

Examples:
  farmer authors                     # Show authors and filter state
  farmer authors detect              # Use user.name and user.email from git config
  farmer authors set alice alice@example.com
  farmer authors filter off`,
	RunE: runAuthorsShow,
}

var authorsDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Add your global git identity to the author list",
	RunE:  runAuthorsDetect,
}

var authorsSetCmd = &cobra.Command{
	Use:   "set [author...]",
	Short: "Replace the author list",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		a.settings.WorkSchedule.GitAuthors = cleanAuthors(args)
		if err := a.save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		color.New(color.FgHiGreen).Printf("  Authors: %s\n", formatAuthors(a.settings.WorkSchedule.GitAuthors))
		return nil
	},
}

var authorsFilterCmd = &cobra.Command{
	Use:       "filter <on|off>",
	Short:     "Turn author filtering on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch strings.ToLower(args[0]) {
		case "on", "true", "yes":
			on = true
		case "off", "false", "no":
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}
		a, err := loadApp()
		if err != nil {
			return err
		}
		a.settings.FilterByGitAuthors = on
		if err := a.save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		color.New(color.FgHiGreen).Printf("  Author filtering %s\n", onOff(on))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authorsCmd)
	authorsCmd.AddCommand(authorsDetectCmd, authorsSetCmd, authorsFilterCmd)
}

func runAuthorsShow(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dimColor := color.New(color.FgHiBlack)

	a, err := loadApp()
	if err != nil {
		return err
	}
	fmt.Println()
	titleColor.Println("  Git Authors")
	fmt.Println()
	fmt.Printf("  Authors:   %s\n", formatAuthors(a.settings.WorkSchedule.GitAuthors))
	fmt.Printf("  Filtering: %s\n", onOff(a.settings.FilterByGitAuthors))
	if len(a.settings.WorkSchedule.GitAuthors) == 0 {
		dimColor.Println("\n  Run 'farmer authors detect' to use your git identity.")
	}
	fmt.Println()
	return nil
}

func runAuthorsDetect(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	identity, err := a.backend.GitConfig(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read git config: %w", err)
	}
	if len(identity) == 0 {
		return fmt.Errorf("no user.name or user.email set in your global git config")
	}
	a.settings.WorkSchedule.GitAuthors = cleanAuthors(append(a.settings.WorkSchedule.GitAuthors, identity...))
	if err := a.save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	color.New(color.FgHiGreen).Printf("  Authors: %s\n", formatAuthors(a.settings.WorkSchedule.GitAuthors))
	return nil
}

// cleanAuthors trims entries and drops blanks and case-insensitive duplicates.
func cleanAuthors(in []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "(none, all commits count)"
	}
	return strings.Join(authors, ", ")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
