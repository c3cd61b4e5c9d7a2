package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/grabdoc/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var resolvedCfg *config.Resolved

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grabdoc",
		Short: "Export Google Drive documents from the command line",
		Long: "grabdoc signs in to Google Drive with OAuth2, lists files, and exports\n" +
			"documents to local files. It can also fetch published documents as CSV.",
		Version: version,
		// Silence Cobra's default error/usage printing; main prints errors.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, args)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newGrabCmd())
	cmd.AddCommand(newFetchCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores the result in resolvedCfg for use by subcommands.
func loadConfig(cmd *cobra.Command, args []string) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	// Only commands that define --mime-type can override it.
	if f := cmd.Flags().Lookup("mime-type"); f != nil && f.Changed {
		cli.MimeType = f.Value.String()
	}

	// export <file-id> [dest] overrides [export] file_id and output.
	if cmd.Name() == "export" {
		if len(args) > 0 {
			cli.FileID = args[0]
		}

		if len(args) > 1 {
			cli.Output = args[1]
		}
	}

	resolved, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it.
func buildLogger() *slog.Logger {
	level := slog.LevelWarn

	if resolvedCfg != nil {
		switch resolvedCfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newHTTPClient returns an HTTP client using the configured timeout.
func newHTTPClient() *http.Client {
	if resolvedCfg == nil {
		return &http.Client{}
	}

	return &http.Client{Timeout: resolvedCfg.Timeout}
}

// userAgent returns the configured User-Agent.
func userAgent() string {
	if resolvedCfg == nil || resolvedCfg.Network.UserAgent == "" {
		return "grabdoc/" + version
	}

	return resolvedCfg.Network.UserAgent
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
