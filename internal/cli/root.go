package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/config"
	"github.com/ishaan812/farmer/internal/db"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "farmer",
	Short: "Farmer - Turn your git history into work summaries",
	Long: `Farmer reads the commit history of one or more local repositories, groups your
commits into work days and asks an AI backend to write a short summary of each day.

Use 'farmer repos add' to choose repositories, 'farmer analyze' to see your timeline
and 'farmer summarize' to generate a summary for a day.

Backends are managed with 'farmer providers'. Settings live in ~/.farmer/settings.json.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := db.Close(); err != nil {
			VerboseLog("Warning: failed to close database: %v", err)
		}
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file path (default: ~/.farmer/settings.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Summary database path (default: ~/.farmer/farmer.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.SilenceErrors = true
}

func IsVerbose() bool {
	return verbose
}

func VerboseLog(format string, args ...interface{}) {
	if IsVerbose() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

func settingsStore() *config.FileStore {
	return config.NewFileStore(configPath)
}
