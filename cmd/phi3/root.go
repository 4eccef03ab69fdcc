package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"workspaces-inventory/phi3/pkg/cli"
	"workspaces-inventory/phi3/pkg/config"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	verbose  bool
)

var rootFlags struct {
	dryRun bool
}

var rootCmd = &cobra.Command{
	Use:   "phi3 [port]",
	Short: "phi3 - minimal completion service",
	Long: `phi3 listens on a TCP port and answers a small subset of HTTP/1.1:

  GET  /health      health check, always {"status":"healthy"}
  POST /completion  completion for the "prompt" field of a JSON body

Every other request gets a 404. Each connection carries one request.

The optional port argument is read like C atoi: "8080abc" is 8080 and a
non-numeric value is 0, which binds an ephemeral port. Without it the port
comes from the configuration (default 11434).

Configuration precedence: defaults < --config file < PHI3_* environment
variables < flags < port argument.`,
	Args:          cobra.MaximumNArgs(1),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")

	rootCmd.Flags().BoolVar(&rootFlags.dryRun, "dry-run", false, "validate configuration and exit")
}

// loadConfig installs the configuration file (or defaults) with environment
// overrides as the global configuration and applies flag overrides to it.
// Commands read the result through config.MustGetConfig.
func loadConfig(path string) error {
	if err := config.Initialize(path); err != nil {
		return cli.NewConfigError(path, err)
	}

	cfg := config.MustGetConfig()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return nil
}
