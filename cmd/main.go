// Package main provides the catalog-admin CLI: the web console, the
// development catalog API and a few catalog commands.
package main

import (
	"fmt"
	"log"
	"os"

	"catalog-admin/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	defaultAppName = "CatalogAdmin" // App name for logger
	version        = "1.0.0"
)

var (
	logger = log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)

	// cfg is loaded by PersistentPreRunE for every command except version.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catalog-admin",
	Short: "Administration console for the product catalog",
	Long: `catalog-admin serves a web console for browsing and editing the
product catalog held by a remote catalog API. It also ships an in-memory
development catalog API and a command to print the catalog as a table.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(productsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "catalog-admin v%s\n", version)
	},
}

// loadConfig reads .env and the environment into cfg.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		// The application can still proceed if environment variables are set in other ways.
		logger.Println("INFO: No .env file found or failed to load, relying on system environment")
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)
	return nil
}
