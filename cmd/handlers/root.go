package handlers

import (
	"fmt"
	"os"

	"startiq/internal/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	jsonOutput bool
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "startiq",
		Short: "StartIQ generates cached AI insights for startups and investors.",
		Long: `StartIQ analyses startup and investor profiles with an LLM and caches
the results for seven days.

Run 'startiq serve' to expose the HTTP API, or use the insight, dealnote,
score and register commands to drive the same pipeline from a terminal.`,
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.startiq.yaml or $HOME/.startiq.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewInsightCmd())
	rootCmd.AddCommand(NewDealNoteCmd())
	rootCmd.AddCommand(NewScoreCmd())
	rootCmd.AddCommand(NewRegisterCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
