package main

import (
	"fmt"
	"io"

	"github.com/natikgadzhi/notion-editor/internal/credentials"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and token status",
	Long: `Status shows which config file is in use, where the token comes from
and which API endpoint is used. It makes no network requests.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, _, err := openSession()
	if err != nil {
		return err
	}

	printStatus(cmd.OutOrStdout(), s)
	return nil
}

// printStatus outputs the session settings to the given writer.
func printStatus(w io.Writer, s *session) {
	_, _ = fmt.Fprintln(w, "Notion Editor Status")
	_, _ = fmt.Fprintln(w, "====================")
	_, _ = fmt.Fprintln(w)

	configFile := s.cfg.Path
	if configFile == "" {
		configFile = "(defaults)"
	}
	_, _ = fmt.Fprintf(w, "Config file:   %s\n", configFile)
	_, _ = fmt.Fprintf(w, "API endpoint:  %s\n", s.cfg.Notion.BaseURL)
	_, _ = fmt.Fprintf(w, "API version:   %s\n", s.cfg.Notion.Version)
	_, _ = fmt.Fprintf(w, "Token store:   %s\n", s.store.Describe())
	_, _ = fmt.Fprintln(w)

	switch s.source {
	case credentials.SourceEnv:
		_, _ = fmt.Fprintf(w, "Token:         set (from %s)\n", credentials.EnvVar)
	case credentials.SourceStore:
		_, _ = fmt.Fprintln(w, "Token:         set (from token store)")
	default:
		_, _ = fmt.Fprintln(w, "Token:         not set")
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Run 'notion-editor login' to store a token.")
		return
	}

	archive := "best effort"
	if s.cfg.Sync.FailFastArchive {
		archive = "fail fast"
	}
	_, _ = fmt.Fprintf(w, "Archive mode:  %s\n", archive)
}
