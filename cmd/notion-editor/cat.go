package main

import (
	"fmt"

	"github.com/natikgadzhi/notion-editor/internal/document"
	"github.com/spf13/cobra"
)

var catOutput string

var catCmd = &cobra.Command{
	Use:   "cat <page>",
	Short: "Print a page as plain text",
	Long: `Cat prints the paragraphs of a page, one per line. Other block types
are skipped. Use -o to write the text to a file instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

func init() {
	catCmd.Flags().StringVarP(&catOutput, "output", "o", "", "write content to this file")
}

func runCat(cmd *cobra.Command, args []string) error {
	pageID, err := resolveID(args[0])
	if err != nil {
		return err
	}

	s, logger, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	content, err := s.client.GetPageContent(ctx, pageID)
	if err != nil {
		return fmt.Errorf("reading page: %w", err)
	}

	if catOutput == "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}

	if err := document.New(false, logger).Write(catOutput, content); err != nil {
		return err
	}
	logger.Info("page exported", "page", pageID, "path", catOutput, "lines", document.CountLines(content))
	return nil
}
