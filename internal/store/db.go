package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type migration struct {
	name string
	run  func(tx *sql.Tx) error
}

var migrations = []migration{
	{name: "0001_content_blocks", run: migrateContentBlocks},
	{name: "0002_block_findings_column", run: migrateBlockFindingsColumn},
	{name: "0003_import_runs", run: migrateImportRuns},
	{name: "0004_fts_rebuild", run: migrateFTSRebuild},
}

func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer at a time; import workers share this single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, ok := applied[m.name]; ok {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.name, err)
		}

		if err := m.run(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %s: %w", m.name, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)`,
			m.name,
			time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.name, err)
		}
	}

	return nil
}

func appliedMigrations(db *sql.DB) (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}

func migrateContentBlocks(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS content_blocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page TEXT NOT NULL,
			block_key TEXT NOT NULL,
			field TEXT NOT NULL,
			raw_html TEXT NOT NULL DEFAULT '',
			clean_html TEXT NOT NULL DEFAULT '',
			content_md TEXT,
			plain_text TEXT,
			clean BOOLEAN NOT NULL DEFAULT 0,
			updated_at DATETIME,
			imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(page, block_key, field)
		);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
			page,
			block_key,
			plain_text,
			content=content_blocks,
			content_rowid=id
		);`,
		`CREATE TRIGGER IF NOT EXISTS content_blocks_ai AFTER INSERT ON content_blocks BEGIN
			INSERT INTO blocks_fts(rowid, page, block_key, plain_text)
			VALUES (new.id, new.page, new.block_key, new.plain_text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS content_blocks_ad AFTER DELETE ON content_blocks BEGIN
			INSERT INTO blocks_fts(blocks_fts, rowid, page, block_key, plain_text)
			VALUES ('delete', old.id, old.page, old.block_key, old.plain_text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS content_blocks_au AFTER UPDATE ON content_blocks BEGIN
			INSERT INTO blocks_fts(blocks_fts, rowid, page, block_key, plain_text)
			VALUES ('delete', old.id, old.page, old.block_key, old.plain_text);
			INSERT INTO blocks_fts(rowid, page, block_key, plain_text)
			VALUES (new.id, new.page, new.block_key, new.plain_text);
		END;`,
		`CREATE INDEX IF NOT EXISTS idx_content_blocks_page ON content_blocks(page, block_key, field);`,
		`CREATE INDEX IF NOT EXISTS idx_content_blocks_clean ON content_blocks(clean);`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func migrateBlockFindingsColumn(tx *sql.Tx) error {
	has, err := hasBlockColumn(tx, "findings")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = tx.Exec(`ALTER TABLE content_blocks ADD COLUMN findings TEXT;`)
	return err
}

func hasBlockColumn(tx *sql.Tx, target string) (bool, error) {
	rows, err := tx.Query(`PRAGMA table_info(content_blocks);`)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == target {
			return true, nil
		}
	}
	return false, rows.Err()
}

func migrateImportRuns(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		inserted INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		unclean INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0
	);`)
	return err
}

func migrateFTSRebuild(tx *sql.Tx) error {
	if _, err := tx.Exec(`INSERT INTO blocks_fts(blocks_fts) VALUES ('rebuild');`); err != nil {
		return err
	}
	return nil
}
