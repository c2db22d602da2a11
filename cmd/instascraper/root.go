package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"instascraper/pkg/ui"
)

var (
	// Version information, set with -ldflags
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool

	printer = ui.Stdout()
)

var rootCmd = &cobra.Command{
	Use:   "instascraper",
	Short: "Collect public Instagram profile data",
	Long: `instascraper collects profile information, stories, highlights, posts and
comments from Instagram's web endpoints.

It logs in as a guest by default. Stored credentials (see 'instascraper auth')
or INSTASCRAPER_USERNAME / INSTASCRAPER_PASSWORD enable a credentialed login.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		printer.SetQuiet(quiet)
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printer.Error("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.instascraper.yaml or ~/.config/instascraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// baseFlags returns the global flags in the form config.Load expects
func baseFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}
