// Package storage defines read access to the directory of GEDCOM sources.
package storage

import (
	"io"

	"github.com/starford/shajara/internal/models"
)

// Provider is the interface for source file access. Sources are never
// written back.
type Provider interface {
	// List returns metadata for every .ged file under dir (relative to the root).
	List(dir string) ([]models.SourceMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Open opens the file at path (relative to the root) for streaming.
	Open(path string) (io.ReadCloser, error)
	// Stat returns metadata for the file at path (relative to the root).
	Stat(path string) (models.SourceMetadata, error)
	// Root returns the absolute root directory.
	Root() string
	// Rel converts an absolute path under Root into a root-relative one.
	Rel(abs string) (string, error)
}
