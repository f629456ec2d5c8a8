package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/tui"
)

var reposCmd = &cobra.Command{
	Use:     "repos",
	Aliases: []string{"repo"},
	Short:   "Choose the repositories to analyze",
	Long: `Manage the set of active repositories. When more than one repository is active
their histories are merged into a single timeline. With no active repositories the
current repository (set with 'farmer repos use') is analyzed.

Examples:
  farmer repos                   # Show active repositories and history
  farmer repos add . ../api      # Activate repositories
  farmer repos add               # Prompt for a path
  farmer repos select            # Pick active repositories from history
  farmer repos remove ../api
  farmer repos use ~/src/app     # Single repository mode`,
	RunE: runReposList,
}

var reposAddCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Activate repositories",
	RunE:  runReposAdd,
}

var reposSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Choose active repositories from recent ones",
	RunE:  runReposSelect,
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <path...>",
	Short: "Deactivate repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReposRemove,
}

var reposUseCmd = &cobra.Command{
	Use:   "use <path>",
	Short: "Set the current repository and clear the active set",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposUse,
}

func init() {
	rootCmd.AddCommand(reposCmd)
	reposCmd.AddCommand(reposAddCmd, reposRemoveCmd, reposUseCmd, reposSelectCmd)
}

func checkRepo(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("path does not exist: %s", abs)
	}
	if _, err := git.OpenRepo(abs); err != nil {
		return "", fmt.Errorf("not a git repository: %s", abs)
	}
	return abs, nil
}

func runReposList(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dimColor := color.New(color.FgHiBlack)
	successColor := color.New(color.FgHiGreen)

	a, err := loadApp()
	if err != nil {
		return err
	}
	s := a.settings

	fmt.Println()
	titleColor.Println("  Repositories")
	fmt.Println()

	active := make(map[string]bool)
	for _, r := range s.ActiveRepos {
		active[r] = true
	}

	switch {
	case len(s.ActiveRepos) > 0:
		for _, r := range s.ActiveRepos {
			successColor.Print("  ● ")
			fmt.Printf("%s", git.RepoName(r))
			dimColor.Printf("  %s\n", r)
		}
	case s.RepoPath != "":
		successColor.Print("  ● ")
		fmt.Printf("%s", git.RepoName(s.RepoPath))
		dimColor.Printf("  %s (current)\n", s.RepoPath)
	default:
		dimColor.Println("  No repositories selected. Run 'farmer repos add <path>'.")
	}

	var recent []string
	for _, r := range s.RepoHistory {
		if !active[r] && r != s.RepoPath {
			recent = append(recent, r)
		}
	}
	if len(recent) > 0 {
		fmt.Println()
		dimColor.Println("  Recent:")
		for _, r := range recent {
			dimColor.Printf("    %s\n", r)
		}
	}
	fmt.Println()
	return nil
}

func runReposAdd(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	successColor := color.New(color.FgHiGreen)
	dimColor := color.New(color.FgHiBlack)

	if len(args) == 0 {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("repository path required when not running in a terminal")
		}
		path, err := tui.RunPathPrompt("Repository to add",
			"Enter the path of a local git repository (esc to cancel)", ".",
			func(p string) error {
				_, err := checkRepo(p)
				return err
			})
		if err != nil {
			return err
		}
		args = []string{path}
	}

	for _, arg := range args {
		path, err := checkRepo(arg)
		if err != nil {
			return err
		}
		if a.settings.ActivateRepo(path) {
			successColor.Printf("  Activated %s\n", path)
		} else {
			dimColor.Printf("  Already active: %s\n", path)
		}
	}
	return a.save()
}

func runReposRemove(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	for _, arg := range args {
		if a.settings.DeactivateRepo(arg) {
			color.New(color.FgHiGreen).Printf("  Deactivated %s\n", arg)
		} else {
			color.New(color.FgHiYellow).Printf("  Not active: %s\n", arg)
		}
	}
	return a.save()
}

func runReposUse(cmd *cobra.Command, args []string) error {
	path, err := checkRepo(args[0])
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	a.settings.ActiveRepos = []string{}
	a.settings.SetRepoPath(path)
	if err := a.save(); err != nil {
		return err
	}
	color.New(color.FgHiGreen).Printf("  Using %s\n", path)
	return nil
}

func runReposSelect(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("repos select requires an interactive terminal")
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	s := a.settings

	active := make(map[string]bool)
	for _, r := range s.ActiveRepos {
		active[r] = true
	}
	var choices []tui.RepoChoice
	seen := make(map[string]bool)
	for _, r := range append(append([]string{}, s.ActiveRepos...), s.RepoHistory...) {
		if seen[r] {
			continue
		}
		seen[r] = true
		choices = append(choices, tui.RepoChoice{Path: r, Name: git.RepoName(r), Active: active[r]})
	}
	if len(choices) == 0 {
		return fmt.Errorf("no recent repositories\n\nRun 'farmer repos add <path>' first")
	}

	result, err := tui.RunRepoSelection(choices)
	if err != nil {
		return err
	}
	s.ActiveRepos = result.Active
	if err := a.save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	color.New(color.FgHiGreen).Printf("  %d repositories active\n", len(result.Active))
	return nil
}
