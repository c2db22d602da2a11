package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"instascraper/pkg/config"
)

const defaultConfigPath = ".instascraper.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage instascraper configuration files.

Configuration is loaded with this precedence:
  - command line flags (highest)
  - INSTASCRAPER_* environment variables
  - .env files
  - configuration file
  - default values (lowest)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration to ./.instascraper.yaml, or to the path given
with --config. The password is never written.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	printer.Success("Configuration written to " + path)
	printer.Dim("Edit it, then run 'instascraper config validate'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, baseFlags())
	if err != nil {
		return err
	}

	display := *cfg
	if display.Instagram.Password != "" {
		display.Instagram.Password = "********"
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	printer.Highlight("Current Configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, baseFlags())
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Instagram.Username != "" && cfg.Instagram.Password == "" {
		warnings = append(warnings, "username set without password; a stored password will be required")
	}
	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	for _, w := range warnings {
		printer.Warning(w)
	}
	printer.Success("Configuration is valid")
	printer.Info("Limits", fmt.Sprintf("%d posts, %d highlight stories, %d comments",
		cfg.Scrape.MaxPosts, cfg.Scrape.MaxHighlightStories, cfg.Scrape.MaxComments))
	printer.Info("Rate limit", fmt.Sprintf("%d requests/minute (%s)", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Strategy))
	printer.Info("Retry", fmt.Sprintf("enabled=%t, max attempts %d", cfg.Retry.Enabled, cfg.Retry.MaxAttempts))
	return nil
}
