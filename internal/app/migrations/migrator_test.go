package migrations

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestVersion(t *testing.T) {
	tests := map[string]string{
		"001_buddy_schema.sql":            "001",
		"/srv/migrations/012_add_idx.sql": "012",
		"003.sql":                         "003.sql",
	}
	for in, want := range tests {
		if got := Version(in); got != want {
			t.Errorf("Version(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPendingFiles_SortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000_dir.sql"), 0o700); err != nil {
		t.Fatal(err)
	}

	files, err := PendingFiles(dir)
	if err != nil {
		t.Fatalf("PendingFiles() error = %v", err)
	}
	want := []string{filepath.Join(dir, "001_a.sql"), filepath.Join(dir, "002_b.sql")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("PendingFiles() = %v, want %v", files, want)
	}
}

func TestPendingFiles_MissingDir(t *testing.T) {
	if _, err := PendingFiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
