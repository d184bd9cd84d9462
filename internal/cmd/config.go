package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Digital-Shane/media-resolver/internal/config"
	"github.com/spf13/cobra"
)

var overwriteConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !overwriteConfig {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Print the configuration after applying the file and MEDIA_RESOLVER_* environment overrides. The API token is masked.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.ConfigPath()
}

func printConfig(w io.Writer, cfg *config.Config) error {
	shown := *cfg
	shown.TMDBAPIToken = maskSecret(cfg.TMDBAPIToken)
	if jsonOutput {
		return writeJSON(w, shown)
	}

	rows := [][2]string{
		{"tmdb_api_token", shown.TMDBAPIToken},
		{"tmdb_base_url", shown.TMDBBaseURL},
		{"tmdb_fallback_url", shown.TMDBFallbackURL},
		{"tmdb_worker_count", fmt.Sprint(shown.TMDBWorkerCount)},
		{"legacy_base_url", shown.LegacyBaseURL},
		{"language", shown.Language()},
		{"proxy_enabled", fmt.Sprint(shown.EnableProxy)},
		{"proxy_urls", strings.Join(shown.Proxies, ", ")},
		{"log_level", shown.LogLevel},
		{"log_format", shown.LogFormat},
		{"log_file", shown.LogFile},
		{"log_retention_days", fmt.Sprint(shown.LogRetentionDays)},
		{"listen_addr", shown.ListenAddr},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(pad(row[0], 20)), row[1])
	}
	return nil
}

// maskSecret keeps the last four characters of s.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}

func init() {
	configInitCmd.Flags().BoolVar(&overwriteConfig, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
