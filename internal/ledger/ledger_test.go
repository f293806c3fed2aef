package ledger

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"patches", "documents"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	base := time.Date(2025, time.June, 18, 9, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Path: "a.md", Section: "News", Policy: "replace", Origin: "cli", Changed: true, Rendered: 3, Checksum: "c1", PatchedAt: base},
		{Path: "b.md", Section: "Demos", Policy: "replace", Origin: "http", Changed: true, Rendered: 1, Checksum: "c2", PatchedAt: base.Add(time.Minute)},
		{Path: "a.md", Section: "Releases", Policy: "prepend", Origin: "scheduler", Created: true, Changed: true, Rendered: 2, Skipped: 1, Checksum: "c3", PatchedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if _, err := db.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := db.Recent("a.md", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Section != "Releases" || got[1].Section != "News" {
		t.Errorf("order = %s, %s; want Releases, News", got[0].Section, got[1].Section)
	}
	if !got[0].Created || got[0].Skipped != 1 || got[0].Origin != "scheduler" {
		t.Errorf("entry = %+v", got[0])
	}
	if !got[0].PatchedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("PatchedAt = %v", got[0].PatchedAt)
	}

	all, err := db.Recent("", 2)
	if err != nil {
		t.Fatalf("Recent all: %v", err)
	}
	if len(all) != 2 || all[0].Path != "a.md" || all[1].Path != "b.md" {
		t.Errorf("recent all = %+v", all)
	}
}

func TestLastChecksum(t *testing.T) {
	db := testDB(t)

	cs, err := db.LastChecksum("a.md")
	if err != nil || cs != "" {
		t.Fatalf("LastChecksum(unknown) = %q, %v", cs, err)
	}

	_, _ = db.Record(Entry{Path: "a.md", Section: "News", Checksum: "one"})
	_, _ = db.Record(Entry{Path: "a.md", Section: "Videos", Checksum: "two"})

	cs, err = db.LastChecksum("a.md")
	if err != nil {
		t.Fatalf("LastChecksum: %v", err)
	}
	if cs != "two" {
		t.Errorf("checksum = %q, want %q", cs, "two")
	}
}
