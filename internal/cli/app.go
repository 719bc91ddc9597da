package cli

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/sipsociety/sipcms/internal/config"
	"github.com/sipsociety/sipcms/internal/ingest"
	"github.com/sipsociety/sipcms/internal/store"
)

type App struct {
	cfg      config.Config
	db       *sql.DB
	store    *store.Store
	renderer *ingest.Renderer
	importer *ingest.Importer
	log      *zap.Logger
}

func NewApp(cfg config.Config, dbPath string, log *zap.Logger) (*App, error) {
	cfg.DBPath = dbPath
	if log == nil {
		log = zap.NewNop()
	}
	db, err := store.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s := store.NewStore(db)
	renderer := ingest.NewRenderer()
	importer := ingest.NewImporter(s, renderer, cfg, log)

	log.Debug("database opened", zap.String("path", cfg.DBPath))
	return &App{
		cfg:      cfg,
		db:       db,
		store:    s,
		renderer: renderer,
		importer: importer,
		log:      log,
	}, nil
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
