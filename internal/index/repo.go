package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/models"
)

// SourceRow represents a row in the sources table.
type SourceRow struct {
	Path        string
	Checksum    string
	Individuals int
	Families    int
	UpdatedAt   time.Time
}

// Rows flattens a parsed source into person index rows, ordered by id.
func Rows(source string, d *gedcom.Data) []models.PersonSummary {
	out := make([]models.PersonSummary, 0, len(d.Individuals))
	for _, id := range d.IndividualIDs() {
		p := d.Individuals[id]
		out = append(out, models.PersonSummary{
			Source:    source,
			ID:        p.ID,
			Name:      gedcom.DisplayName(p),
			Nasab:     gedcom.DisplayNameWithNasab(d, p, gedcom.DefaultNasabDepth),
			Birth:     p.Birth.String(),
			Death:     p.Death.String(),
			Sex:       string(p.Sex),
			IsPrivate: !gedcom.IsDisplayable(p),
		})
	}
	return out
}

func searchText(p models.PersonSummary) string {
	return gedcom.NormalizeSearch(p.Name)
}

// ReplaceSource swaps every person row of src.Path for people within a
// single transaction.
func (db *DB) ReplaceSource(ctx context.Context, src SourceRow, people []models.PersonSummary) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sources (path, checksum, individuals, families, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum    = excluded.checksum,
			individuals = excluded.individuals,
			families    = excluded.families,
			updated_at  = excluded.updated_at
	`, src.Path, src.Checksum, src.Individuals, src.Families, src.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert source: %w", err)
	}

	if err := ftsDelete(ctx, tx, src.Path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM people WHERE source = ?`, src.Path); err != nil {
		return fmt.Errorf("index: clear people: %w", err)
	}

	if len(people) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO people (source, id, name, nasab, search, birth, death, sex, is_private)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare person insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range people {
			text := searchText(p)
			if _, err := stmt.ExecContext(ctx, src.Path, p.ID, p.Name, p.Nasab, text, p.Birth, p.Death, p.Sex, p.IsPrivate); err != nil {
				return fmt.Errorf("index: insert person %s: %w", p.ID, err)
			}
			if err := ftsInsert(ctx, tx, src.Path, p.ID, text); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteSource removes a source and all of its people.
func (db *DB) DeleteSource(ctx context.Context, path string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(ctx, tx, path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM people WHERE source = ?`, path); err != nil {
		return fmt.Errorf("index: delete people: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sources WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete source: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a source, or empty string if
// the source was never indexed.
func (db *DB) GetChecksum(ctx context.Context, path string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM sources WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed source keyed by path.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// CountPeople returns the number of indexed people of a source, or of all
// sources when source is empty.
func (db *DB) CountPeople(ctx context.Context, source string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM people WHERE (? = '' OR source = ?)`, source, source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("index: count people: %w", err)
	}
	return n, nil
}

// queryTokens splits a search query into normalized tokens.
func queryTokens(query string) []string {
	return strings.Fields(gedcom.NormalizeSearch(query))
}

func scanPeople(rows *sql.Rows) ([]models.PersonSummary, error) {
	defer rows.Close()
	out := []models.PersonSummary{}
	for rows.Next() {
		var p models.PersonSummary
		if err := rows.Scan(&p.Source, &p.ID, &p.Name, &p.Nasab, &p.Birth, &p.Death, &p.Sex); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
