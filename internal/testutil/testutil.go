// Package testutil provides shared test helpers for setting up source
// directories, indexes and loaded tree services.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/shajara/internal/cache"
	"github.com/starford/shajara/internal/index"
	"github.com/starford/shajara/internal/storage"
	"github.com/starford/shajara/internal/treeservice"
)

// TestDB creates a temporary SQLite index that is automatically closed.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "shajara-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSources creates a temporary sources directory holding files
// (relative path to content) and a storage.FS rooted at it.
func TestSources(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteSource(t, dir, name, content)
	}
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteSource writes content to name under dir, creating parent directories.
func WriteSource(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestService builds a tree service over files with a temporary index and
// an in-memory cache, and loads every source.
func TestService(t *testing.T, files map[string]string, opts treeservice.Options) *treeservice.Service {
	t.Helper()
	_, store := TestSources(t, files)
	svc := treeservice.NewService(store, TestDB(t), cache.NewMemoryCache(16), DiscardLogger(), opts)
	if err := svc.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return svc
}
