package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/wxreport/internal/config"
)

var (
	cfgFile   string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "wxreport",
	Short: "Monthly weather reports from logged station data",
	Long: `wxreport loads dated wind speed, temperature and solar radiation records
from CSV files or an imported database and prints monthly summaries through an
interactive menu: wind speed for a month, temperature and solar energy by month
for a year, and a combined per-month table exported to CSV.

The import and backfill commands fill the database from CSV manifests or from
the WeatherFlow Tempest REST API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (text or json)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig sets up logging and reads the config. An explicit --log-format
// wins over log_format from the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	setupLogging(logFormat)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-format") && cfg.LogFormat != "" {
		setupLogging(cfg.LogFormat)
	}
	return cfg, nil
}

func setupLogging(format string) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
