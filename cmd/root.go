package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/output"
)

var Version = "dev"

var (
	// jsonOutput and csvOutput select the output format.
	jsonOutput bool
	csvOutput  bool
	// configPath overrides the config file location.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:     "schwab",
	Short:   "Schwab Trader API CLI",
	Long:    `A CLI for accounts, quotes, option chains and price history via the Schwab Trader API.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate("schwab version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&csvOutput, "csv", false, "Output in CSV format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/schwab/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.MarkFlagsMutuallyExclusive("json", "csv")
}

// GetOutputMode returns the output mode selected by the global flags.
func GetOutputMode() output.Mode {
	switch {
	case jsonOutput:
		return output.ModeJSON
	case csvOutput:
		return output.ModeCSV
	default:
		return output.ModeText
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// requireArg returns a readable error for a missing positional argument.
func requireArg(args []string, name string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return args[0], nil
}
