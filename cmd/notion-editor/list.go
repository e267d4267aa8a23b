package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/natikgadzhi/notion-editor/internal/notion"
	"github.com/spf13/cobra"
)

var databasesCmd = &cobra.Command{
	Use:     "databases",
	Aliases: []string{"dbs"},
	Short:   "List databases shared with the integration",
	Args:    cobra.NoArgs,
	RunE:    runDatabases,
}

var pagesCmd = &cobra.Command{
	Use:   "pages <database>",
	Short: "List the pages of a database",
	Long: `Pages lists the first page of results of a database query, without
filters or sorting. The database can be given as a URL or an id.`,
	Args: cobra.ExactArgs(1),
	RunE: runPages,
}

func runDatabases(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	databases, err := s.client.ListDatabases(ctx)
	if err != nil {
		return fmt.Errorf("listing databases: %w", err)
	}

	printDatabases(cmd.OutOrStdout(), databases)
	return nil
}

func runPages(cmd *cobra.Command, args []string) error {
	databaseID, err := resolveID(args[0])
	if err != nil {
		return err
	}

	s, logger, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	pages, err := s.client.QueryDatabase(ctx, databaseID)
	if err != nil {
		return fmt.Errorf("querying database: %w", err)
	}

	printPages(cmd.OutOrStdout(), pages)
	return nil
}

// printDatabases writes one "id  title" row per database.
func printDatabases(w io.Writer, databases []notion.DatabaseSummary) {
	if len(databases) == 0 {
		_, _ = fmt.Fprintln(w, "No databases found. Share a database with the integration first.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE")
	for _, db := range databases {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", db.ID, db.Title)
	}
	_ = tw.Flush()
}

// printPages writes one "id  title" row per page.
func printPages(w io.Writer, pages []notion.PageSummary) {
	if len(pages) == 0 {
		_, _ = fmt.Fprintln(w, "No pages found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE")
	for _, p := range pages {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Title)
	}
	_ = tw.Flush()
}
