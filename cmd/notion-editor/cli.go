package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/natikgadzhi/notion-editor/internal/config"
	"github.com/natikgadzhi/notion-editor/internal/credentials"
	"github.com/natikgadzhi/notion-editor/internal/notion"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Shared flag variables for all commands.
var (
	configPath string
	verbose    bool
)

// logLevel is shared by every logger so the configured level can be applied
// after the config file is read.
var logLevel = new(slog.LevelVar)

// setupLogger creates and sets the default logger.
// If output is nil, logs go to stderr.
func setupLogger(output io.Writer, verbose bool) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}

	if verbose {
		logLevel.Set(slog.LevelDebug)
	}

	logger := slog.New(tint.NewHandler(output, &tint.Options{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	return logger
}

// applyLogLevel sets the configured level unless --verbose overrides it.
func applyLogLevel(cfg *config.Config) {
	if verbose {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(parseLevel(cfg.Logging.Level))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// editorLogOutput returns where logs go while the editor owns the terminal
// and a function that closes it.
func editorLogOutput(cfg *config.Config) (io.Writer, func() error) {
	if cfg.Logging.File == "" {
		return io.Discard, func() error { return nil }
	}
	out := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return out, out.Close
}

// setupSignalHandler creates a context that cancels on SIGINT/SIGTERM.
// The returned cancel function should be deferred.
func setupSignalHandler(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("received shutdown signal, canceling...")
		cancel()
	}()

	return ctx, cancel
}

// loadConfig reads the config file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyLogLevel(cfg)
	return cfg, nil
}

// tokenStore returns the credential store selected in cfg.
func tokenStore(cfg *config.Config) credentials.Store {
	if cfg.Credentials.Store == config.StoreKeyring {
		return credentials.DefaultKeyringStore()
	}
	return &credentials.FileStore{Path: cfg.Credentials.File}
}

// session bundles what most commands need.
type session struct {
	cfg    *config.Config
	store  credentials.Store
	source credentials.Source
	client *notion.Client
}

// newSession resolves the token and builds a client from cfg. Extra options
// are applied after the configured ones.
func newSession(cfg *config.Config, logger *slog.Logger, opts ...notion.Option) (*session, error) {
	store := tokenStore(cfg)
	token, source, err := credentials.NewResolver(store).Resolve()
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved token", "source", source, "store", store.Describe())

	clientOpts := []notion.Option{
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithVersion(cfg.Notion.Version),
		notion.WithTimeout(cfg.Notion.Timeout),
		notion.WithFailFastArchive(cfg.Sync.FailFastArchive),
	}
	clientOpts = append(clientOpts, opts...)

	return &session{
		cfg:    cfg,
		store:  store,
		source: source,
		client: notion.NewClient(token, logger, clientOpts...),
	}, nil
}

// openSession loads the config and builds a session, logging to stderr.
func openSession(opts ...notion.Option) (*session, *slog.Logger, error) {
	logger := setupLogger(os.Stderr, verbose)
	cfg, err := loadConfig()
	if err != nil {
		return nil, logger, err
	}
	s, err := newSession(cfg, logger, opts...)
	if err != nil {
		return nil, logger, err
	}
	return s, logger, nil
}

// resolveID accepts a Notion URL or id and returns the dashed id.
func resolveID(ref string) (string, error) {
	id, err := notion.ParseURL(ref)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", ref, err)
	}
	return id, nil
}
