//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/shajara/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the people.search column.
	return nil
}

func ftsInsert(_ context.Context, _ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ context.Context, _ *sql.Tx, _ string) error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a LIKE-based substring search (fallback when FTS5 is not
// compiled in). Every token must occur in the normalized name.
func (db *DB) Search(ctx context.Context, source, query string, limit int) ([]models.PersonSummary, error) {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return []models.PersonSummary{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	var b strings.Builder
	b.WriteString(`SELECT source, id, name, nasab, birth, death, sex FROM people WHERE is_private = 0 AND (? = '' OR source = ?)`)
	args := []any{source, source}
	for _, tok := range tokens {
		b.WriteString(` AND search LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(tok)+"%")
	}
	b.WriteString(` ORDER BY name, source, id LIMIT ?`)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanPeople(rows)
}
