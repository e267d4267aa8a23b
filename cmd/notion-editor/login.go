package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natikgadzhi/notion-editor/internal/credentials"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var skipVerify bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a Notion integration token",
	Long: `Login prompts for a Notion integration token, checks it against the
API and saves it in the configured token store.

When stdin is not a terminal the token is read from the first line of stdin,
so it can be piped in from a password manager.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Notion token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "save the token without checking it")
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, logger, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	token, err := readToken(os.Stdin, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s.client.SetToken(token)

	if !skipVerify {
		user, err := s.client.Me(ctx)
		if err != nil {
			return fmt.Errorf("checking token: %w", err)
		}
		logger.Info("token accepted", "user", user.Name)
	}

	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", s.store.Describe())
	if s.source == credentials.SourceEnv {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Note: %s is set and takes precedence over the stored token.\n", credentials.EnvVar)
	}
	return nil
}

// readToken prompts without echo on a terminal and reads one line otherwise.
func readToken(in *os.File, prompt io.Writer) (string, error) {
	if term.IsTerminal(int(in.Fd())) {
		_, _ = fmt.Fprint(prompt, "Notion token: ")
		raw, err := term.ReadPassword(int(in.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return parseToken(string(raw))
	}
	return readTokenLine(in)
}

func readTokenLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return parseToken(line)
}

func parseToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", errors.New("no token provided")
	}
	return token, nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, _, err := openSession()
	if err != nil {
		return err
	}

	if err := s.store.Delete(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token removed from %s\n", s.store.Describe())
	if s.source == credentials.SourceEnv {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Note: %s is still set.\n", credentials.EnvVar)
	}
	return nil
}
