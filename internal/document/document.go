// Package document reads and writes the local plain-text files that are
// pushed to and pulled from Notion pages.
package document

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Files handles local document files.
type Files struct {
	dryRun bool
	logger *slog.Logger
}

// New creates a new Files instance. In dry-run mode writes are logged but
// nothing touches the disk.
func New(dryRun bool, logger *slog.Logger) *Files {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Files{
		dryRun: dryRun,
		logger: logger,
	}
}

// Read returns the content of the file at path.
func (f *Files) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %s: %w", path, err)
	}
	f.logger.Debug("read file", "path", path, "size", len(data))
	return string(data), nil
}

// Write writes content to path, creating parent directories as needed.
func (f *Files) Write(path, content string) error {
	if f.dryRun {
		f.logger.Info("would write", "path", path, "size", len(content))
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	f.logger.Debug("wrote file", "path", path, "size", len(content))
	return nil
}

// Title returns the file name without directory or extension.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CountLines returns the number of lines in content. A trailing newline
// does not start a new line and empty content has none.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
