package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	userID     string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "phimgo",
	Short: "CLI client for the phimgo movie catalog",
	Long: `phimgo - CLI client for the phimgo movie catalog

Search and browse the catalog, import movies from the upstream
source and manage your lists.

Run 'phimgod' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("PHIMGO_SERVER", "http://localhost:8485"), "Server URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("PHIMGO_USER"), "User ID for list and comment commands")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("phimgo {{.Version}}\n")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
