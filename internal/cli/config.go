package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/config"
	"github.com/ishaan812/farmer/internal/constants"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change settings stored in ~/.farmer/settings.json.

Keys:
  verbosity             concise, normal or detailed
  custom-prompt         extra instructions appended to every prompt ("" to clear)
  deep-analysis         on/off: include code diffs in the prompt
  max-file-size-kb      skip diffs of larger files
  max-files             maximum files per commit in deep analysis
  copy-links            on/off: include commit links in copied text
  copy-date             on/off: include the date in copied text
  working-days          comma separated weekday names
  weekend-attribution   friday or monday

Examples:
  farmer config
  farmer config set verbosity concise
  farmer config set deep-analysis on`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		if err := setConfigValue(a.settings, args[0], args[1]); err != nil {
			return err
		}
		if err := a.save(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		color.New(color.FgHiGreen).Printf("  %s = %s\n", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settingsStore().Path())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configPathCmd)
}

var setters = map[string]func(s *config.Settings, v string) error{
	"verbosity": func(s *config.Settings, v string) error {
		switch constants.Verbosity(v) {
		case constants.VerbosityConcise, constants.VerbosityNormal, constants.VerbosityDetailed:
			s.AIConfig.Verbosity = constants.Verbosity(v)
			return nil
		}
		return fmt.Errorf("verbosity must be concise, normal or detailed")
	},
	"custom-prompt": func(s *config.Settings, v string) error {
		s.AIConfig.CustomPrompt = strings.TrimSpace(v)
		return nil
	},
	"deep-analysis": boolSetter(func(s *config.Settings, b bool) { s.DeepAnalysisSettings.Enabled = b }),
	"max-file-size-kb": intSetter(func(s *config.Settings, n int) {
		s.DeepAnalysisSettings.MaxFileSizeKB = n
	}),
	"max-files": intSetter(func(s *config.Settings, n int) {
		s.DeepAnalysisSettings.MaxFilesPerCommit = n
	}),
	"copy-links": boolSetter(func(s *config.Settings, b bool) { s.CopySettings.IncludeCommitLinks = b }),
	"copy-date":  boolSetter(func(s *config.Settings, b bool) { s.CopySettings.IncludeDate = b }),
	"working-days": func(s *config.Settings, v string) error {
		var days []string
		for _, d := range strings.Split(v, ",") {
			d = strings.ToLower(strings.TrimSpace(d))
			if d == "" {
				continue
			}
			if !isWeekday(d) {
				return fmt.Errorf("unknown weekday %q", d)
			}
			days = append(days, d)
		}
		if len(days) == 0 {
			return fmt.Errorf("at least one working day is required")
		}
		s.WorkSchedule.WorkingDays = days
		return nil
	},
	"weekend-attribution": func(s *config.Settings, v string) error {
		v = strings.ToLower(v)
		if v != "friday" && v != "monday" {
			return fmt.Errorf("weekend-attribution must be friday or monday")
		}
		s.WorkSchedule.WeekendAttribution = v
		return nil
	},
}

func setConfigValue(s *config.Settings, key, value string) error {
	set, ok := setters[key]
	if !ok {
		keys := make([]string, 0, len(setters))
		for k := range setters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown key %q (valid: %s)", key, strings.Join(keys, ", "))
	}
	return set(s, value)
}

func boolSetter(apply func(*config.Settings, bool)) func(*config.Settings, string) error {
	return func(s *config.Settings, v string) error {
		switch strings.ToLower(v) {
		case "on", "true", "yes", "1":
			apply(s, true)
		case "off", "false", "no", "0":
			apply(s, false)
		default:
			return fmt.Errorf("expected on or off, got %q", v)
		}
		return nil
	}
}

func intSetter(apply func(*config.Settings, int)) func(*config.Settings, string) error {
	return func(s *config.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("expected a positive number, got %q", v)
		}
		apply(s, n)
		return nil
	}
}

func isWeekday(d string) bool {
	switch d {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	labelColor := color.New(color.FgHiWhite)
	dimColor := color.New(color.FgHiBlack)

	a, err := loadApp()
	if err != nil {
		return err
	}
	s := a.settings

	provider := "(none)"
	if p, err := s.AIConfig.Selected(); err == nil {
		provider = fmt.Sprintf("%s (%s)", p.Name, constants.ProviderDescription(p.Kind))
	} else if s.AIConfig.SelectedProvider != "" {
		provider = err.Error()
	}

	customPrompt := s.AIConfig.CustomPrompt
	if customPrompt == "" {
		customPrompt = "(none)"
	}

	rows := [][2]string{
		{"provider", provider},
		{"verbosity", string(s.AIConfig.Verbosity)},
		{"custom-prompt", customPrompt},
		{"deep-analysis", onOff(s.DeepAnalysisSettings.Enabled)},
		{"max-file-size-kb", strconv.Itoa(s.DeepAnalysisSettings.MaxFileSizeKB)},
		{"max-files", strconv.Itoa(s.DeepAnalysisSettings.MaxFilesPerCommit)},
		{"copy-links", onOff(s.CopySettings.IncludeCommitLinks)},
		{"copy-date", onOff(s.CopySettings.IncludeDate)},
		{"working-days", strings.Join(s.WorkSchedule.WorkingDays, ", ")},
		{"weekend-attribution", s.WorkSchedule.WeekendAttribution},
		{"authors", formatAuthors(s.WorkSchedule.GitAuthors)},
		{"author-filter", onOff(s.FilterByGitAuthors)},
	}

	fmt.Println()
	titleColor.Println("  Settings")
	dimColor.Printf("  %s\n\n", a.store.Path())
	for _, r := range rows {
		labelColor.Printf("  %-20s", r[0])
		fmt.Printf(" %s\n", r[1])
	}
	fmt.Println()
	return nil
}
