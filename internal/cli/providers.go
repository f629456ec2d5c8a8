package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/llm"
	"github.com/ishaan812/farmer/internal/logger"
)

var (
	providerName    string
	providerCommand string
	providerBaseURL string
	providerAPIKey  string
	providerModel   string
	providerSelect  bool
)

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider"},
	Short:   "Manage AI backends",
	Long: `List, add, remove, enable, disable and select the AI backends used for summaries.

Supported kinds:
  claude-code   Local claude CLI
  opencode      Local opencode CLI
  openapi       Ollama HTTP generate endpoint (alias: ollama)
  openai        Hosted chat completions (OPENAI_API_KEY)
  gemini        Google Gemini (GEMINI_API_KEY)`,
	RunE: runProvidersList,
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	RunE:  runProvidersList,
}

var providersAddCmd = &cobra.Command{
	Use:   "add <kind>",
	Short: "Add a provider",
	Long: `Add a provider of the given kind. Defaults are filled in for the command,
base URL and model. The new provider is disabled unless --select is given.

Examples:
  farmer providers add claude-code --select
  farmer providers add ollama --model llama3.2
  farmer providers add openai --api-key sk-... --model gpt-4o`,
	Args: cobra.ExactArgs(1),
	RunE: runProvidersAdd,
}

var providersRemoveCmd = &cobra.Command{
	Use:   "remove <id|name>",
	Short: "Remove a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProviders(func(a *app) error {
			return a.settings.AIConfig.RemoveProvider(args[0])
		}, "Removed %s", args[0])
	},
}

var providersEnableCmd = &cobra.Command{
	Use:   "enable <id|name>",
	Short: "Enable a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProviders(func(a *app) error {
			return a.settings.AIConfig.SetProviderEnabled(args[0], true)
		}, "Enabled %s", args[0])
	},
}

var providersDisableCmd = &cobra.Command{
	Use:   "disable <id|name>",
	Short: "Disable a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateProviders(func(a *app) error {
			return a.settings.AIConfig.SetProviderEnabled(args[0], false)
		}, "Disabled %s", args[0])
	},
}

var providersSelectCmd = &cobra.Command{
	Use:   "select [id|name]",
	Short: "Select the provider used for summaries",
	Long:  `Select the provider used for summaries. Without an argument an interactive picker is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProvidersSelect,
}

var providersDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Detect local backends (claude, opencode, ollama)",
	Long: `Look for the claude and opencode CLIs on PATH and for a running Ollama server with
at least one model. Detected backends that are not configured yet are added, disabled.`,
	RunE: runProvidersDiscover,
}

var providersModelsCmd = &cobra.Command{
	Use:   "models <kind>",
	Short: "Show suggested models for a backend kind",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersModels,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd, providersAddCmd, providersRemoveCmd,
		providersEnableCmd, providersDisableCmd, providersSelectCmd, providersDiscoverCmd, providersModelsCmd)

	providersAddCmd.Flags().StringVar(&providerName, "name", "", "Display name")
	providersAddCmd.Flags().StringVar(&providerCommand, "command", "", "CLI command (claude-code, opencode)")
	providersAddCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "Endpoint base URL (ollama, openai, gemini)")
	providersAddCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (openai, gemini)")
	providersAddCmd.Flags().StringVar(&providerModel, "model", "", "Model name")
	providersAddCmd.Flags().BoolVar(&providerSelect, "select", false, "Enable and select the new provider")
}

func updateProviders(fn func(a *app) error, format string, args ...interface{}) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := fn(a); err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	color.New(color.FgHiGreen).Printf("  "+format+"\n", args...)
	return nil
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgHiCyan, color.Bold)
	dimColor := color.New(color.FgHiBlack)
	successColor := color.New(color.FgHiGreen)
	warnColor := color.New(color.FgHiYellow)

	a, err := loadApp()
	if err != nil {
		return err
	}
	ai := a.settings.AIConfig

	fmt.Println()
	titleColor.Println("  AI Providers")
	fmt.Println()

	if len(ai.Providers) == 0 {
		dimColor.Println("  No providers configured.")
		dimColor.Println("  Run 'farmer providers discover' or 'farmer providers add <kind>'.")
		fmt.Println()
		return nil
	}

	for _, p := range ai.Providers {
		marker := "  "
		if p.ID == ai.SelectedProvider {
			marker = "* "
		}
		fmt.Printf("  %s%s", marker, p.Name)
		dimColor.Printf("  (%s, id %s)", constants.ProviderDescription(p.Kind), p.ID)
		if p.Enabled {
			successColor.Print("  enabled")
		} else {
			warnColor.Print("  disabled")
		}
		fmt.Println()
		for _, detail := range providerDetails(p) {
			dimColor.Printf("      %s\n", detail)
		}
	}
	fmt.Println()
	return nil
}

func providerDetails(p llm.Provider) []string {
	var out []string
	if p.Config.Command != "" {
		out = append(out, "command: "+p.Config.Command)
	}
	if p.Config.BaseURL != "" {
		out = append(out, "base url: "+p.Config.BaseURL)
	}
	if p.Config.Model != "" {
		out = append(out, "model: "+p.Config.Model)
	}
	if p.Config.APIKey != "" {
		out = append(out, "api key: "+maskKey(p.Config.APIKey))
	} else if env := constants.APIKeyEnv(p.Kind); env != "" {
		out = append(out, "api key: from $"+env)
	}
	return out
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func runProvidersAdd(cmd *cobra.Command, args []string) error {
	kind, ok := constants.ParseProviderKind(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", llm.ErrUnsupportedProvider, args[0])
	}

	p := llm.NewProvider(kind, providerName)
	if providerCommand != "" {
		p.Config.Command = providerCommand
	}
	if providerBaseURL != "" {
		p.Config.BaseURL = strings.TrimRight(providerBaseURL, "/")
	}
	if providerAPIKey != "" {
		p.Config.APIKey = providerAPIKey
	}
	if providerModel != "" {
		p.Config.Model = providerModel
	}

	return updateProviders(func(a *app) error {
		if err := a.settings.AIConfig.AddProvider(p); err != nil {
			return err
		}
		if providerSelect {
			return a.settings.AIConfig.SelectProvider(p.ID)
		}
		return nil
	}, "Added %s (id %s)", p.Name, p.ID)
}

func runProvidersSelect(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	ai := &a.settings.AIConfig
	if len(ai.Providers) == 0 {
		return fmt.Errorf("no providers configured\n\nRun 'farmer providers discover' or 'farmer providers add <kind>'")
	}

	target := ""
	if len(args) == 1 {
		target = args[0]
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("provider id required when not running in a terminal")
		}
		items := make([]string, len(ai.Providers))
		for i, p := range ai.Providers {
			items[i] = fmt.Sprintf("%s - %s", p.Name, constants.ProviderDescription(p.Kind))
		}
		sel := promptui.Select{
			Label: "Select AI provider",
			Items: items,
			Size:  10,
		}
		idx, _, err := sel.Run()
		if err != nil {
			return fmt.Errorf("cancelled")
		}
		target = ai.Providers[idx].ID
	}

	if err := ai.SelectProvider(target); err != nil {
		return err
	}
	selected, _ := ai.Selected()
	if err := llm.NewDispatcher(logger.Nop()).Validate(selected); err != nil {
		color.New(color.FgHiYellow).Printf("  Warning: %v\n", err)
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	color.New(color.FgHiGreen).Printf("  Selected %s\n", selected.Name)
	return nil
}

func runProvidersDiscover(cmd *cobra.Command, args []string) error {
	dimColor := color.New(color.FgHiBlack)
	successColor := color.New(color.FgHiGreen)

	a, err := loadApp()
	if err != nil {
		return err
	}

	s := newSpinner(" Looking for local backends...")
	if interactive() {
		s.Start()
	}
	found := llm.NewDiscoverer(a.log).Discover(cmd.Context())
	s.Stop()

	fmt.Println()
	if len(found) == 0 {
		dimColor.Println("  No local backends found.")
		fmt.Println()
		return nil
	}

	added := a.settings.AIConfig.MergeDiscovered(found)
	if len(added) == 0 {
		dimColor.Println("  All detected backends are already configured.")
		fmt.Println()
		return nil
	}
	if err := a.save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	for _, p := range added {
		successColor.Printf("  Added %s", p.Name)
		dimColor.Printf(" (id %s, disabled)\n", p.ID)
	}
	dimColor.Println("  Use 'farmer providers select <id>' to start using one.")
	fmt.Println()
	return nil
}

func runProvidersModels(cmd *cobra.Command, args []string) error {
	kind, ok := constants.ParseProviderKind(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", llm.ErrUnsupportedProvider, args[0])
	}
	dimColor := color.New(color.FgHiBlack)
	models := constants.GetModels(kind)
	fmt.Println()
	if len(models) == 0 {
		dimColor.Printf("  %s uses the model configured in the tool itself.\n\n", constants.ProviderDescription(kind))
		return nil
	}
	def := constants.DefaultModel(kind)
	for _, m := range models {
		marker := "  "
		if m.Model == def {
			marker = "* "
		}
		fmt.Printf("  %s%s", marker, m.Model)
		dimColor.Printf("  %s\n", m.Description)
	}
	fmt.Println()
	return nil
}
