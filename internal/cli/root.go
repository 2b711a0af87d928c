// Package cli is the command line front end: an interactive chat, one-shot
// questions and the HTTP server, all sharing one wiring of config, data and
// sessions.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "config.yaml"

// options are the flags shared by every command
type options struct {
	configPath        string
	dataPath          string
	syntheticFallback bool
	logLevel          string
}

// Execute runs the root command
func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree
func NewRoot() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "cib",
		Short:        "Customer insight chatbot over a clustered customer table",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config.yaml (defaults to ./config.yaml when present)")
	flags.StringVar(&opts.dataPath, "data", "", "Customer table (.csv or .xlsx), overrides data.path")
	flags.BoolVar(&opts.syntheticFallback, "synthetic-fallback", false, "Use a generated demo table when the data file cannot be loaded")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	root.AddCommand(
		chatCmd(opts),
		askCmd(opts),
		serveCmd(opts),
	)
	return root
}

// resolveConfigPath picks the explicit --config value, else ./config.yaml if
// it exists, else nothing (defaults and environment only)
func (o *options) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}
