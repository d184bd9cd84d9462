/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "media-resolver",
	Short: "Resolve media titles to canonical catalog ids",
	Long: `media-resolver searches the movie and TV catalog, builds canonical media ids,
and rewrites legacy and embed URLs into the canonical /media/{id} form.

Catalog requests go through an optional proxy, then the primary host, then a
fallback host. Configuration is read from ~/.media-resolver/config.yaml and
MEDIA_RESOLVER_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

func init() {
	// Global flags for all commands
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.media-resolver/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}
