package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sipsociety/sipcms/internal/model"
)

const defaultListLimit = 50

// UpsertBlock stores a block keyed by (page, key, field). A block is clean
// when its stored HTML already equals its sanitized form.
func (s *Store) UpsertBlock(ctx context.Context, in BlockInput) (blockID int64, inserted bool, err error) {
	if err := validateBlockInput(in); err != nil {
		return 0, false, err
	}
	findings, err := findingsToDB(in.Findings)
	if err != nil {
		return 0, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lookup = `SELECT id FROM content_blocks WHERE page = ? AND block_key = ? AND field = ?`
	var existingID int64
	err = tx.QueryRowContext(ctx, lookup, in.Page, in.Key, in.Field).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		inserted = true
	case err != nil:
		return 0, false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content_blocks (
			page, block_key, field, raw_html, clean_html, content_md,
			plain_text, clean, findings, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(page, block_key, field) DO UPDATE SET
			raw_html = excluded.raw_html,
			clean_html = excluded.clean_html,
			content_md = excluded.content_md,
			plain_text = excluded.plain_text,
			clean = excluded.clean,
			findings = excluded.findings,
			updated_at = excluded.updated_at,
			imported_at = CURRENT_TIMESTAMP
	`,
		in.Page,
		in.Key,
		in.Field,
		in.RawHTML,
		in.CleanHTML,
		in.ContentMD,
		in.PlainText,
		in.RawHTML == in.CleanHTML,
		findings,
		timeToDBString(in.UpdatedAt),
	)
	if err != nil {
		return 0, false, err
	}

	if err = tx.QueryRowContext(ctx, lookup, in.Page, in.Key, in.Field).Scan(&blockID); err != nil {
		return 0, false, err
	}
	if err = tx.Commit(); err != nil {
		return 0, false, err
	}
	return blockID, inserted, nil
}

func validateBlockInput(in BlockInput) error {
	if !model.IsPage(in.Page) {
		return fmt.Errorf("%w: unknown page %q (expected %s)", ErrInvalidInput, in.Page, strings.Join(model.Pages, "|"))
	}
	if strings.TrimSpace(in.Key) == "" {
		return fmt.Errorf("%w: block key must not be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Field) == "" {
		return fmt.Errorf("%w: block field must not be empty", ErrInvalidInput)
	}
	return nil
}

func (s *Store) GetBlock(ctx context.Context, id int64) (Block, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blockSelectColumns+` FROM content_blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if err != nil {
		return Block{}, wrapNotFound("block", err)
	}
	return b, nil
}

func (s *Store) FindBlock(ctx context.Context, page, key, field string) (Block, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+blockSelectColumns+`
		FROM content_blocks
		WHERE page = ? AND block_key = ? AND field = ?
	`, page, key, field)
	b, err := scanBlock(row)
	if err != nil {
		return Block{}, wrapNotFound("block", err)
	}
	return b, nil
}

// ListBlocks returns blocks in page/key/field order. Limit defaults to 50.
func (s *Store) ListBlocks(ctx context.Context, opts BlockListOptions) ([]Block, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	return s.listBlocks(ctx, opts, opts.Limit)
}

// AllBlocks is ListBlocks without a row limit, used by export and audit.
func (s *Store) AllBlocks(ctx context.Context, opts BlockListOptions) ([]Block, error) {
	return s.listBlocks(ctx, opts, -1)
}

func (s *Store) listBlocks(ctx context.Context, opts BlockListOptions, limit int) ([]Block, error) {
	status := strings.ToLower(strings.TrimSpace(opts.Status))
	if status == "" {
		status = "all"
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if opts.Page != "" {
		if !model.IsPage(opts.Page) {
			return nil, fmt.Errorf("%w: unknown page %q (expected %s)", ErrInvalidInput, opts.Page, strings.Join(model.Pages, "|"))
		}
		where = append(where, "page = ?")
		args = append(args, opts.Page)
	}
	switch status {
	case "clean":
		where = append(where, "clean = 1")
	case "unclean":
		where = append(where, "clean = 0")
	case "all":
	default:
		return nil, fmt.Errorf("%w: invalid status %q (expected all|clean|unclean)", ErrInvalidInput, opts.Status)
	}

	query := `SELECT ` + blockSelectColumns + ` FROM content_blocks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY page, block_key, field LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanBlocks(rows)
}

func (s *Store) SearchBlocks(ctx context.Context, opts SearchOptions) ([]Block, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}

	where := []string{"blocks_fts MATCH ?"}
	args := []any{opts.Query}
	if opts.Page != "" {
		where = append(where, "b.page = ?")
		args = append(args, opts.Page)
	}

	query := `
		SELECT b.id, b.page, b.block_key, b.field, b.raw_html, b.clean_html,
			b.content_md, b.plain_text, b.clean, b.findings, b.updated_at, b.imported_at
		FROM blocks_fts
		JOIN content_blocks b ON b.id = blocks_fts.rowid
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY bm25(blocks_fts), b.page, b.block_key
		LIMIT ?
	`
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanBlocks(rows)
}

// ApplyClean replaces the stored HTML of each listed block with its
// sanitized form. Unknown ids abort the whole batch. It returns how many
// blocks changed.
func (s *Store) ApplyClean(ctx context.Context, ids []int64) (changed int64, err error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: at least one block id is required", ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, id := range ids {
		var clean bool
		if err = tx.QueryRowContext(ctx, `SELECT clean FROM content_blocks WHERE id = ?`, id).Scan(&clean); err != nil {
			err = wrapNotFound(fmt.Sprintf("block %d", id), err)
			return 0, err
		}
		if clean {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE content_blocks
			SET raw_html = clean_html, clean = 1, findings = NULL
			WHERE id = ?
		`, id); err != nil {
			return 0, err
		}
		changed++
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}

func (s *Store) ApplyCleanAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content_blocks
		SET raw_html = clean_html, clean = 1, findings = NULL
		WHERE clean = 0
	`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) DeleteBlock(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content_blocks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("block: %w", ErrNotFound)
	}
	return nil
}

func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{ByPage: make(map[string]int)}
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN clean = 1 THEN 1 ELSE 0 END), 0)
		FROM content_blocks
	`).Scan(&stats.Blocks, &stats.Clean); err != nil {
		return Stats{}, err
	}
	stats.Unclean = stats.Blocks - stats.Clean
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM import_runs`).Scan(&stats.Imports); err != nil {
		return Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT page, COUNT(*) FROM content_blocks GROUP BY page`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var page string
		var n int
		if err := rows.Scan(&page, &n); err != nil {
			return Stats{}, err
		}
		stats.ByPage[page] = n
	}
	return stats, rows.Err()
}
