package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/natikgadzhi/notion-editor/internal/config"
	"github.com/natikgadzhi/notion-editor/internal/credentials"
	"github.com/natikgadzhi/notion-editor/internal/document"
	"github.com/natikgadzhi/notion-editor/internal/notion"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.level); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestEditorLogOutput(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = ""

	out, closeLog := editorLogOutput(cfg)
	if out != io.Discard {
		t.Errorf("editorLogOutput() without file = %T, want io.Discard", out)
	}
	if err := closeLog(); err != nil {
		t.Errorf("close without file = %v", err)
	}

	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "editor.log")
	out, closeLog = editorLogOutput(cfg)
	if _, err := io.WriteString(out, "starting editor\n"); err != nil {
		t.Fatalf("writing log: %v", err)
	}
	if err := closeLog(); err != nil {
		t.Errorf("close log file = %v", err)
	}

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if string(data) != "starting editor\n" {
		t.Errorf("log file = %q", data)
	}
}

func TestTokenStore(t *testing.T) {
	cfg := config.Default()
	cfg.Credentials.File = "/tmp/token"

	if store, ok := tokenStore(cfg).(*credentials.FileStore); !ok || store.Path != "/tmp/token" {
		t.Errorf("tokenStore(file) = %#v, want FileStore at /tmp/token", tokenStore(cfg))
	}

	cfg.Credentials.Store = config.StoreKeyring
	if _, ok := tokenStore(cfg).(*credentials.KeyringStore); !ok {
		t.Errorf("tokenStore(keyring) = %#v, want KeyringStore", tokenStore(cfg))
	}
}

func TestResolveID(t *testing.T) {
	got, err := resolveID("https://www.notion.so/acme/Plan-0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("resolveID() error = %v", err)
	}
	if want := "01234567-89ab-cdef-0123-456789abcdef"; got != want {
		t.Errorf("resolveID() = %q, want %q", got, want)
	}

	if _, err := resolveID("not a page"); err == nil {
		t.Error("expected error for reference without an id")
	}
}

func TestReadTokenLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"line with newline", "secret_abc\n", "secret_abc", false},
		{"no trailing newline", "secret_abc", "secret_abc", false},
		{"surrounding whitespace", "  secret_abc \r\n", "secret_abc", false},
		{"only first line", "secret_abc\nignored\n", "secret_abc", false},
		{"empty", "", "", true},
		{"blank line", "   \n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readTokenLine(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readTokenLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readTokenLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadContent(t *testing.T) {
	files := document.New(false, discardLogger())

	got, err := readContent(files, "-", strings.NewReader("from stdin\n"))
	if err != nil || got != "from stdin\n" {
		t.Errorf("readContent(stdin) = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := files.Write(path, "from file"); err != nil {
		t.Fatal(err)
	}
	got, err = readContent(files, path, strings.NewReader("unused"))
	if err != nil || got != "from file" {
		t.Errorf("readContent(file) = %q, %v", got, err)
	}

	if _, err := readContent(files, filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	printPlan(&buf, "page-1", "Line1\n\nLine2\r\n")

	want := "Would replace the content of page-1 with 2 paragraph(s):\n" +
		"   1  Line1\n" +
		"   2  Line2\n"
	if buf.String() != want {
		t.Errorf("printPlan() = %q, want %q", buf.String(), want)
	}
}

func TestPrintDatabases(t *testing.T) {
	var buf bytes.Buffer
	printDatabases(&buf, []notion.DatabaseSummary{
		{ID: "db-1", Title: "Tasks"},
		{ID: "db-2", Title: notion.UntitledDatabase},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "db-1") || !strings.HasSuffix(lines[1], "Tasks") {
		t.Errorf("unexpected row %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], notion.UntitledDatabase) {
		t.Errorf("unexpected row %q", lines[2])
	}

	buf.Reset()
	printPages(&buf, nil)
	if !strings.Contains(buf.String(), "No pages found") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

type recordingUpdater struct {
	pageID  string
	content string
	err     error
}

func (r *recordingUpdater) UpdatePageContent(ctx context.Context, pageID, content string) error {
	r.pageID, r.content = pageID, content
	return r.err
}

func TestPushRevision(t *testing.T) {
	updater := &recordingUpdater{}
	if err := pushRevision(context.Background(), updater, discardLogger(), "page-1", "notes/plan.txt", "a\nb"); err != nil {
		t.Fatalf("pushRevision() error = %v", err)
	}
	if updater.pageID != "page-1" || updater.content != "a\nb" {
		t.Errorf("UpdatePageContent got (%q, %q)", updater.pageID, updater.content)
	}

	updater.err = errors.New("boom")
	err := pushRevision(context.Background(), updater, discardLogger(), "page-1", "notes/plan.txt", "a")
	if err == nil || !strings.Contains(err.Error(), "pushing plan") {
		t.Errorf("pushRevision() error = %v, want it to name the document", err)
	}
}

func TestNewSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer from_env" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != "2099-01-01" {
			t.Errorf("Notion-Version = %q", got)
		}
		if r.Method != http.MethodPost || r.URL.Path != "/v1/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"results": [{"id": "db-1", "title": [{"plain_text": "Tasks"}]}]}`)
	}))
	defer server.Close()

	t.Setenv(credentials.EnvVar, "from_env")

	cfg := config.Default()
	cfg.Notion.BaseURL = server.URL + "/v1"
	cfg.Notion.Version = "2099-01-01"
	cfg.Credentials.File = filepath.Join(t.TempDir(), ".notion_token")

	s, err := newSession(cfg, discardLogger())
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	if s.source != credentials.SourceEnv {
		t.Errorf("source = %q, want env", s.source)
	}

	dbs, err := s.client.ListDatabases(context.Background())
	if err != nil {
		t.Fatalf("ListDatabases() error = %v", err)
	}
	if len(dbs) != 1 || dbs[0].Title != "Tasks" {
		t.Errorf("ListDatabases() = %+v", dbs)
	}
}

func TestPrintStatus(t *testing.T) {
	t.Setenv(credentials.EnvVar, "")

	cfg := config.Default()
	cfg.Credentials.File = filepath.Join(t.TempDir(), ".notion_token")

	s, err := newSession(cfg, discardLogger())
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}

	var buf bytes.Buffer
	printStatus(&buf, s)
	output := buf.String()

	if !strings.Contains(output, "Config file:   (defaults)") {
		t.Errorf("expected default config marker:\n%s", output)
	}
	if !strings.Contains(output, "Token:         not set") {
		t.Errorf("expected missing token:\n%s", output)
	}
	if !strings.Contains(output, "notion-editor login") {
		t.Errorf("expected login hint:\n%s", output)
	}

	if err := s.store.Save("stored"); err != nil {
		t.Fatal(err)
	}
	s, err = newSession(cfg, discardLogger())
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	buf.Reset()
	printStatus(&buf, s)
	if !strings.Contains(buf.String(), "set (from token store)") {
		t.Errorf("expected stored token:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Archive mode:  best effort") {
		t.Errorf("expected archive mode:\n%s", buf.String())
	}
}
