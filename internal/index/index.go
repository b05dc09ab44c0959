package index

import (
	"context"

	"github.com/starford/shajara/internal/models"
)

// PersonIndex defines the interface for person indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PersonIndex interface {
	ReplaceSource(ctx context.Context, src SourceRow, people []models.PersonSummary) error
	DeleteSource(ctx context.Context, path string) error
	GetChecksum(ctx context.Context, path string) (string, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Search(ctx context.Context, source, query string, limit int) ([]models.PersonSummary, error)
	CountPeople(ctx context.Context, source string) (int, error)
	Close() error
}

// Verify *DB satisfies PersonIndex at compile time.
var _ PersonIndex = (*DB)(nil)
