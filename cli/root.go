// Package cli implements the worklog command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/worklog-engine/config"
	"github.com/warp/worklog-engine/factory"
)

var (
	cfgFile     string
	envFile     string
	storageKind string
	storagePath string

	// buildOptions lets tests pin the clock and the publisher.
	buildOptions factory.Options
)

var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Record work sessions and price semi-monthly pay periods",
	Long: `worklog records work sessions (date, location, time in, time out),
groups them into semi-monthly pay periods and prices each period's total.

Settings come from an optional YAML file, a .env file and WORKLOG_*
environment variables. The storage flags override all of them.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $WORKLOG_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&storageKind, "backend", "", "storage backend: memory, file, sqlite")
	rootCmd.PersistentFlags().StringVar(&storagePath, "path", "", "database file (sqlite) or data directory (file)")

	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(receiptCmd)
}

// openApp loads the configuration and opens storage for one command run.
func openApp(cmd *cobra.Command) (*factory.App, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path := cfgFile
	if path == "" {
		path = os.Getenv("WORKLOG_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if storageKind != "" {
		cfg.Storage.Backend = storageKind
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}

	log, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return factory.Build(cmd.Context(), cfg, log, buildOptions)
}

// openWritableApp refuses to continue when the existing entries could not be
// read, since the next save would replace them with an empty collection.
func openWritableApp(cmd *cobra.Command) (*factory.App, error) {
	app, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	if app.LoadErr != nil {
		app.Close()
		return nil, errors.Join(errors.New("existing entries could not be loaded, refusing to write"), app.LoadErr)
	}
	return app, nil
}
