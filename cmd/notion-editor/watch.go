package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/natikgadzhi/notion-editor/internal/document"
	"github.com/natikgadzhi/notion-editor/internal/notion"
	"github.com/natikgadzhi/notion-editor/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchDebounce time.Duration
	watchInitial  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <page> <file>",
	Short: "Push a file to a page every time it is saved",
	Long: `Watch pushes the file to the page each time it changes on disk, until
interrupted. Pushes run one at a time; a failed push is logged and retried on
the next save.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a change is pushed")
	watchCmd.Flags().BoolVar(&watchInitial, "push-initial", false, "push the current content before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	pageID, err := resolveID(args[0])
	if err != nil {
		return err
	}
	path := args[1]

	s, logger, err := openSession()
	if err != nil {
		return err
	}
	if !s.client.Authenticated() {
		return notion.ErrUnauthenticated
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	push := func(content string) error {
		return pushRevision(ctx, s.client, logger, pageID, path, content)
	}

	if watchInitial {
		content, err := document.New(false, logger).Read(path)
		if err != nil {
			return err
		}
		if err := push(content); err != nil {
			return err
		}
	}

	logger.Info("watching for changes", "file", path, "page", pageID)
	return watch.Watch(ctx, path, watch.Options{
		Debounce: watchDebounce,
		Logger:   logger,
	}, push)
}

// pageUpdater is the part of notion.Client a push needs.
type pageUpdater interface {
	UpdatePageContent(ctx context.Context, pageID, content string) error
}

func pushRevision(ctx context.Context, client pageUpdater, logger *slog.Logger, pageID, path, content string) error {
	start := time.Now()
	if err := client.UpdatePageContent(ctx, pageID, content); err != nil {
		return fmt.Errorf("pushing %s: %w", document.Title(path), err)
	}
	logger.Info("pushed revision",
		"file", path,
		"page", pageID,
		"lines", document.CountLines(content),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
