package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sipsociety/sipcms/internal/richtext"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sipcms.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewStore(db)
}

// mustUpsertRaw sanitizes raw the way the importer does and stores the result.
func mustUpsertRaw(t *testing.T, store *Store, page, key, field, raw string) int64 {
	t.Helper()
	clean, findings := richtext.Analyze(raw)
	id, _, err := store.UpsertBlock(context.Background(), BlockInput{
		Page:      page,
		Key:       key,
		Field:     field,
		RawHTML:   raw,
		CleanHTML: clean,
		PlainText: richtext.PlainText(raw),
		Findings:  findings,
	})
	if err != nil {
		t.Fatalf("upsert %s/%s/%s: %v", page, key, field, err)
	}
	return id
}
