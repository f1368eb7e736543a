// Package testutil provides shared test helpers for document directories,
// ledgers and services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/mdxmend/internal/ledger"
	"github.com/starford/mdxmend/internal/mendservice"
	"github.com/starford/mdxmend/internal/storage"
)

// Logger returns a logger that discards everything below error level.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestLedger creates a temporary SQLite ledger that is closed on cleanup.
func TestLedger(t *testing.T) *ledger.DB {
	t.Helper()
	db, err := ledger.Open(filepath.Join(t.TempDir(), "mdxmend-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDocs creates a temporary directory holding files and returns it with
// a storage.Provider for the ".mdx" extension.
func TestDocs(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dir, ".mdx")
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestService wires a service over files with a fresh ledger.
func TestService(t *testing.T, files map[string]string) (string, *mendservice.Service) {
	t.Helper()
	dir, store := TestDocs(t, files)
	return dir, mendservice.New(store, TestLedger(t), nil, Logger())
}

// ReadFile returns the contents of name inside dir, failing the test on error.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
