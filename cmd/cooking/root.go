package cooking

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kipparis/cooking-notebook/internal/app"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	current *app.Run
)

var rootCmd = &cobra.Command{
	Use:           "cooking",
	Short:         "cooking keeps a personal recipe and nutrient notebook",
	Long:          "cooking is a local-first recipe notebook: shopping lists, nutrient totals and recommended intake for a meal plan.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		r, err := app.NewRun(cfg)
		if err != nil {
			return err
		}
		current = r
		current.Log.Debug("command started", zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRun()
	},
}

// closeRun ends the current invocation. PersistentPostRunE is skipped when a
// command fails, so Execute calls it as well.
func closeRun() error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

func Execute() {
	err := rootCmd.Execute()
	if current != nil && err != nil {
		current.Log.Debug("command failed", zap.Error(err))
	}
	if cerr := closeRun(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides db_path)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <user config dir>/cooking/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}
