package ingest

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/sipsociety/sipcms/internal/config"
	"github.com/sipsociety/sipcms/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "sipcms.db")
	db, err := store.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return store.NewStore(db)
}

func newTestImporter(s *store.Store, log *zap.Logger) *Importer {
	cfg := config.Config{ImportConcurrency: 4, SummaryLength: 90}
	return NewImporter(s, NewRenderer(), cfg, log)
}
