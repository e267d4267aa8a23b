package main

import (
	"errors"
	"os"

	"github.com/natikgadzhi/notion-editor/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the full-screen editor",
	Long: `Edit opens the full-screen editor: pick a database, pick a page, edit
its text and press ctrl+s to save it back to Notion.

If no token is configured the editor asks for one and saves it in the
configured token store. Logs go to logging.file from the config, if set.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the editor needs an interactive terminal; see 'notion-editor --help' for other commands")
	}

	// Load config before the logger exists so logs can be sent to the file.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logOutput, closeLog := editorLogOutput(cfg)
	defer func() { _ = closeLog() }()
	logger := setupLogger(logOutput, verbose)

	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	logger.Info("starting editor", "authenticated", s.client.Authenticated())
	return tui.Run(ctx, s.client, tui.Options{
		SaveToken: s.store.Save,
		Logger:    logger,
	})
}
