package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatch(t *testing.T, path string, onChange func(string) error) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, Options{Debounce: 20 * time.Millisecond}, onChange)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Watch() error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Watch() did not stop after cancel")
		}
	})
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return cancel
}

// waitFor returns once want is reported. A write may be observed half done
// (truncated first), so intermediate contents are skipped.
func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change %q", want)
		}
	}
}

func TestWatch_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 10)
	startWatch(t, path, func(content string) error {
		changes <- content
		return nil
	})

	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changes, "second")
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 10)
	startWatch(t, path, func(content string) error {
		changes <- content
		return nil
	})

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("noise"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		t.Errorf("unexpected change %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_RenameOverTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 10)
	startWatch(t, path, func(content string) error {
		changes <- content
		return nil
	})

	tmp := filepath.Join(dir, ".doc.txt.swp")
	if err := os.WriteFile(tmp, []byte("renamed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changes, "renamed")
}

func TestWatch_RetriesAfterHandlerError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan string, 10)
	calls := 0
	startWatch(t, path, func(content string) error {
		calls++
		changes <- content
		if calls == 1 {
			return errors.New("push failed")
		}
		return nil
	})

	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changes, "second")

	// Same content again: reported because the previous push failed.
	if err := os.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changes, "second")
}
