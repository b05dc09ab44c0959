//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/shajara/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS people_fts USING fts5(
			source UNINDEXED,
			id UNINDEXED,
			search,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(ctx context.Context, tx *sql.Tx, source, id, text string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO people_fts (source, id, search) VALUES (?, ?, ?)`, source, id, text)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, tx *sql.Tx, source string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM people_fts WHERE source = ?`, source); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// matchExpr turns tokens into an FTS5 query where every token must prefix
// some word of the name.
func matchExpr(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"*`
	}
	return strings.Join(parts, " AND ")
}

// Search performs an FTS5 prefix search over public people, optionally
// restricted to one source.
func (db *DB) Search(ctx context.Context, source, query string, limit int) ([]models.PersonSummary, error) {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return []models.PersonSummary{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.source, p.id, p.name, p.nasab, p.birth, p.death, p.sex
		FROM people_fts f
		JOIN people p ON p.source = f.source AND p.id = f.id
		WHERE people_fts MATCH ?
		  AND p.is_private = 0
		  AND (? = '' OR p.source = ?)
		ORDER BY rank, p.name, p.id
		LIMIT ?
	`, matchExpr(tokens), source, source, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanPeople(rows)
}
