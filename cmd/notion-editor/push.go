package main

import (
	"fmt"
	"io"

	"github.com/natikgadzhi/notion-editor/internal/document"
	"github.com/natikgadzhi/notion-editor/internal/notion"
	"github.com/spf13/cobra"
)

var (
	pushFailFast bool
	pushDryRun   bool
)

var pushCmd = &cobra.Command{
	Use:   "push <page> [file]",
	Short: "Replace a page's content with a local file",
	Long: `Push archives every block of the page and appends one paragraph per
non-blank line of the file. With no file, or "-", the content is read from
stdin.

The replacement is not atomic: if appending fails after the old blocks were
archived, the page is left without them.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPush,
}

func init() {
	pushCmd.Flags().BoolVar(&pushFailFast, "fail-fast", false, "stop at the first block that cannot be archived")
	pushCmd.Flags().BoolVarP(&pushDryRun, "dry-run", "n", false, "print the paragraphs instead of pushing them")
}

func runPush(cmd *cobra.Command, args []string) error {
	pageID, err := resolveID(args[0])
	if err != nil {
		return err
	}

	path := "-"
	if len(args) == 2 {
		path = args[1]
	}

	var opts []notion.Option
	if cmd.Flags().Changed("fail-fast") {
		opts = append(opts, notion.WithFailFastArchive(pushFailFast))
	}

	s, logger, err := openSession(opts...)
	if err != nil {
		return err
	}

	content, err := readContent(document.New(false, logger), path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if pushDryRun {
		printPlan(cmd.OutOrStdout(), pageID, content)
		return nil
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	if err := s.client.UpdatePageContent(ctx, pageID, content); err != nil {
		return fmt.Errorf("pushing page: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d paragraph(s) to %s\n", len(notion.SplitParagraphs(content)), pageID)
	return nil
}

// readContent reads path, or stdin when path is "-".
func readContent(files *document.Files, path string, stdin io.Reader) (string, error) {
	if path != "-" {
		return files.Read(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// printPlan lists the paragraphs a push would create.
func printPlan(w io.Writer, pageID, content string) {
	paragraphs := notion.SplitParagraphs(content)
	_, _ = fmt.Fprintf(w, "Would replace the content of %s with %d paragraph(s):\n", pageID, len(paragraphs))
	for i, p := range paragraphs {
		_, _ = fmt.Fprintf(w, "%4d  %s\n", i+1, p)
	}
}

