// Package main provides the entry point for the notion-editor CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/natikgadzhi/notion-editor/internal/credentials"
	"github.com/natikgadzhi/notion-editor/internal/notion"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "notion-editor",
	Short: "Edit Notion pages as plain text",
	Long: `notion-editor reads and writes Notion pages as plain text.

Run it without arguments (or with "edit") for the full-screen editor, or use
the subcommands to list databases, print pages and push local files.

The API token is read from the NOTION_TOKEN environment variable, then from
the token store configured in the config file (~/.notion_token by default).`,
	SilenceUsage: true,
	RunE:         runEdit,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "notion-editor version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		statusCmd,
		databasesCmd,
		pagesCmd,
		catCmd,
		pushCmd,
		watchCmd,
		editCmd,
		validateCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, notion.ErrUnauthenticated) {
			_, _ = fmt.Fprintf(os.Stderr, "Set %s or run 'notion-editor login' first.\n", credentials.EnvVar)
		}
		os.Exit(1)
	}
}
