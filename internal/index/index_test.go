package index

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/models"
)

const peopleGED = `0 @I1@ INDI
1 NAME Omar /Saeed/
1 SEX M
1 BIRT
2 DATE 1900
1 FAMS @F1@
0 @I2@ INDI
1 NAME Khaled /Saeed/
1 SEX M
1 FAMC @F1@
0 @I3@ INDI
1 NAME PRIVATE
1 FAMC @F1@
0 @I4@ INDI
1 NAME عُمَر /الحلبي/
0 @F1@ FAM
1 HUSB @I1@
1 CHIL @I2@
1 CHIL @I3@
`

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "shajara-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func indexSource(t *testing.T, db *DB, path, checksum, text string) {
	t.Helper()
	d := gedcom.Parse(text)
	src := SourceRow{Path: path, Checksum: checksum, Individuals: len(d.Individuals), Families: len(d.Families), UpdatedAt: time.Now()}
	if err := db.ReplaceSource(context.Background(), src, Rows(path, d)); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}
}

func ids(people []models.PersonSummary) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Source + ":" + p.ID
	}
	return out
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM sources`).Scan(&count); err != nil {
		t.Fatalf("sources table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM people`).Scan(&count); err != nil {
		t.Fatalf("people table missing: %v", err)
	}
}

func TestRows(t *testing.T) {
	rows := Rows("a.ged", gedcom.Parse(peopleGED))
	if len(rows) != 4 {
		t.Fatalf("len = %d", len(rows))
	}
	khaled := rows[1]
	if khaled.ID != "@I2@" || khaled.Name != "Khaled Saeed" || khaled.Nasab != "Khaled بن Omar Saeed" {
		t.Errorf("row = %+v", khaled)
	}
	if rows[0].Birth != "1900" || rows[0].Sex != "M" {
		t.Errorf("row = %+v", rows[0])
	}
	if !rows[2].IsPrivate || rows[1].IsPrivate {
		t.Error("privacy flag not carried")
	}
}

func TestReplaceAndGetChecksum(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	indexSource(t, db, "a.ged", "abc123", peopleGED)

	cs, err := db.GetChecksum(ctx, "a.ged")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	n, err := db.CountPeople(ctx, "a.ged")
	if err != nil || n != 4 {
		t.Errorf("CountPeople = %d, %v", n, err)
	}
}

func TestReplaceDropsOldPeople(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	indexSource(t, db, "a.ged", "1", peopleGED)
	indexSource(t, db, "a.ged", "2", "0 @X1@ INDI\n1 NAME Solo\n")

	n, _ := db.CountPeople(ctx, "a.ged")
	if n != 1 {
		t.Errorf("people after replace = %d, want 1", n)
	}
	got, err := db.Search(ctx, "a.ged", "omar", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("stale hits: %v", ids(got))
	}
	cs, _ := db.GetChecksum(ctx, "a.ged")
	if cs != "2" {
		t.Errorf("checksum = %q", cs)
	}
}

func TestDeleteSource(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	indexSource(t, db, "del.ged", "x", peopleGED)

	if err := db.DeleteSource(ctx, "del.ged"); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	cs, _ := db.GetChecksum(ctx, "del.ged")
	if cs != "" {
		t.Errorf("deleted source still has checksum %q", cs)
	}
	n, _ := db.CountPeople(ctx, "")
	if n != 0 {
		t.Errorf("expected 0 people after delete, got %d", n)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum(context.Background(), "nonexistent.ged")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	indexSource(t, db, "a.ged", "1", peopleGED)
	indexSource(t, db, "b.ged", "2", peopleGED)

	got, err := db.AllChecksums(context.Background())
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(got) != 2 || got["a.ged"] != "1" || got["b.ged"] != "2" {
		t.Errorf("checksums = %v", got)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	indexSource(t, db, "a.ged", "1", peopleGED)
	indexSource(t, db, "b.ged", "2", peopleGED)

	got, err := db.Search(ctx, "", "khaled", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cross-source hits = %v", ids(got))
	}

	got, _ = db.Search(ctx, "b.ged", "KHALED saeed", 10)
	if len(got) != 1 || got[0].Source != "b.ged" || got[0].ID != "@I2@" {
		t.Errorf("scoped hits = %v", ids(got))
	}
	if got[0].Nasab == "" {
		t.Error("nasab not returned")
	}
}

func TestSearch_IgnoresDiacritics(t *testing.T) {
	db := testDB(t)
	indexSource(t, db, "a.ged", "1", peopleGED)

	got, err := db.Search(context.Background(), "", "عمر", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "@I4@" {
		t.Errorf("hits = %v", ids(got))
	}
}

func TestSearch_ExcludesPrivateAndBlank(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	indexSource(t, db, "a.ged", "1", peopleGED)

	got, _ := db.Search(ctx, "", "private", 10)
	if len(got) != 0 {
		t.Errorf("private hits = %v", ids(got))
	}
	got, _ = db.Search(ctx, "", "   ", 10)
	if len(got) != 0 {
		t.Errorf("blank query hits = %v", ids(got))
	}
}

func TestSearch_Limit(t *testing.T) {
	db := testDB(t)
	indexSource(t, db, "a.ged", "1", peopleGED)

	got, _ := db.Search(context.Background(), "", "saeed", 1)
	if len(got) != 1 {
		t.Errorf("limit ignored: %v", ids(got))
	}
}
