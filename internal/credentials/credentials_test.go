package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".notion_token")
	store := &FileStore{Path: path}

	token, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if token != "" {
		t.Errorf("Load() on missing file = %q, want empty", token)
	}

	if err := store.Save("secret_123"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat token file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("token file mode = %o, want 600", perm)
		}
	}

	token, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token != "secret_123" {
		t.Errorf("Load() = %q, want %q", token, "secret_123")
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if token, _ := store.Load(); token != "" {
		t.Errorf("Load() after Delete = %q, want empty", token)
	}
}

func TestFileStore_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".notion_token")
	if err := os.WriteFile(path, []byte("  secret_abc\n"), 0o600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}

	token, err := (&FileStore{Path: path}).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if token != "secret_abc" {
		t.Errorf("Load() = %q, want %q", token, "secret_abc")
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := DefaultKeyringStore()

	if token, err := store.Load(); err != nil || token != "" {
		t.Fatalf("Load() on empty keyring = %q, %v", token, err)
	}
	if err := store.Save("secret_kr"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if token, err := store.Load(); err != nil || token != "secret_kr" {
		t.Errorf("Load() = %q, %v, want secret_kr", token, err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestResolver(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		stored     string
		wantToken  string
		wantSource Source
	}{
		{"nothing configured", "", "", "", SourceNone},
		{"store only", "", "from_file", "from_file", SourceStore},
		{"env wins over store", "from_env", "from_file", "from_env", SourceEnv},
		{"blank env falls back", "   ", "from_file", "from_file", SourceStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvVar, tt.env)

			store := &FileStore{Path: filepath.Join(t.TempDir(), ".notion_token")}
			if tt.stored != "" {
				if err := store.Save(tt.stored); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}

			token, source, err := NewResolver(store).Resolve()
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestResolver_NilStore(t *testing.T) {
	t.Setenv(EnvVar, "")
	token, source, err := (&Resolver{EnvVar: EnvVar}).Resolve()
	if err != nil || token != "" || source != SourceNone {
		t.Errorf("Resolve() = %q, %q, %v", token, source, err)
	}
}
