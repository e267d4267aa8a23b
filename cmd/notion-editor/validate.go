package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natikgadzhi/notion-editor/internal/config"
	"github.com/natikgadzhi/notion-editor/internal/credentials"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and Notion connectivity",
	Long: `Validate checks that the configuration is valid and that notion-editor
can reach Notion with the configured token.

This command performs the following checks:
1. Config file is valid YAML with all required fields
2. A token is set (environment or token store)
3. The token file, if used, is private to the user
4. Notion API is accessible (validates token)
5. The log file directory exists or can be created`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

// ValidationResult holds the result of a single validation check.
type ValidationResult struct {
	Check   string
	Passed  bool
	Message string
}

// runValidate performs all validation checks and reports results.
func runValidate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, verbose)

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	var results []ValidationResult
	var hasErrors bool

	// Check 1: Config file is valid and complete
	logger.Debug("loading configuration", "path", configPath)
	cfg, err := loadConfig()
	if err != nil {
		results = append(results, ValidationResult{
			Check:   "Config valid",
			Passed:  false,
			Message: err.Error(),
		})
		printResults(cmd.OutOrStdout(), results)
		return fmt.Errorf("validation failed")
	}
	configMsg := "using defaults"
	if cfg.Path != "" {
		configMsg = cfg.Path
	}
	results = append(results, ValidationResult{
		Check:   "Config valid",
		Passed:  true,
		Message: configMsg,
	})

	s, err := newSession(cfg, logger)
	if err != nil {
		results = append(results, ValidationResult{
			Check:   "Token readable",
			Passed:  false,
			Message: err.Error(),
		})
		printResults(cmd.OutOrStdout(), results)
		return fmt.Errorf("validation failed")
	}

	// Check 2: Token is set
	if s.source == credentials.SourceNone {
		results = append(results, ValidationResult{
			Check:   "Token set",
			Passed:  false,
			Message: fmt.Sprintf("set %s or run 'notion-editor login'", credentials.EnvVar),
		})
		hasErrors = true
	} else {
		results = append(results, ValidationResult{
			Check:   "Token set",
			Passed:  true,
			Message: fmt.Sprintf("from %s", s.source),
		})
	}

	// Check 3: Token file permissions
	if cfg.Credentials.Store == config.StoreFile {
		passed, msg := checkTokenFile(cfg.Credentials.File)
		results = append(results, ValidationResult{
			Check:   "Token file private",
			Passed:  passed,
			Message: msg,
		})
		if !passed {
			hasErrors = true
		}
	}

	// Check 4: Notion API connectivity
	if s.client.Authenticated() {
		logger.Debug("testing Notion API connectivity")
		user, err := s.client.Me(ctx)
		if err != nil {
			results = append(results, ValidationResult{
				Check:   "Notion API accessible",
				Passed:  false,
				Message: fmt.Sprintf("failed to connect: %v", err),
			})
			hasErrors = true
		} else {
			results = append(results, ValidationResult{
				Check:   "Notion API accessible",
				Passed:  true,
				Message: fmt.Sprintf("connected as %q", user.Name),
			})
		}
	}

	// Check 5: Log file directory
	if cfg.Logging.File != "" {
		passed, msg := checkLogPath(cfg.Logging.File)
		results = append(results, ValidationResult{
			Check:   "Log file path valid",
			Passed:  passed,
			Message: msg,
		})
		if !passed {
			hasErrors = true
		}
	}

	printResults(cmd.OutOrStdout(), results)

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "\nAll checks passed!")
	return nil
}

// checkTokenFile verifies an existing token file is not readable by others.
// A missing file passes: the token may come from the environment.
func checkTokenFile(path string) (bool, string) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, fmt.Sprintf("no token file at %s", path)
		}
		return false, fmt.Sprintf("cannot access: %v", err)
	}

	if info.IsDir() {
		return false, fmt.Sprintf("is a directory: %s", path)
	}

	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return false, fmt.Sprintf("mode %04o allows other users to read it; run chmod 600 %s", perm, path)
	}

	return true, ""
}

// checkLogPath verifies the log file directory exists or can be created.
func checkLogPath(path string) (bool, string) {
	dir := filepath.Dir(path)

	// If dir is "." (current directory), it always exists
	if dir == "." {
		return true, ""
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Try to create the directory
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return false, fmt.Sprintf("cannot create directory %s: %v", dir, err)
			}
			return true, fmt.Sprintf("created directory: %s", dir)
		}
		return false, fmt.Sprintf("cannot access directory: %v", err)
	}

	if !info.IsDir() {
		return false, fmt.Sprintf("parent path is not a directory: %s", dir)
	}

	return true, ""
}

// printResults outputs all validation results in a formatted way.
func printResults(w io.Writer, results []ValidationResult) {
	_, _ = fmt.Fprintln(w, "\nValidation Results:")
	_, _ = fmt.Fprintln(w, "-------------------")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}

		if r.Message != "" {
			_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", status, r.Check, r.Message)
		} else {
			_, _ = fmt.Fprintf(w, "[%s] %s\n", status, r.Check)
		}
	}
}
