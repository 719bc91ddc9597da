package store

import (
	"database/sql"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const blockSelectColumns = `
	id, page, block_key, field, raw_html, clean_html, content_md, plain_text,
	clean, findings, updated_at, imported_at
`

func scanBlock(scanner rowScanner) (Block, error) {
	var b Block
	var contentMD, plainText, findings, updatedAt sql.NullString
	var importedAt string
	if err := scanner.Scan(
		&b.ID,
		&b.Page,
		&b.Key,
		&b.Field,
		&b.RawHTML,
		&b.CleanHTML,
		&contentMD,
		&plainText,
		&b.Clean,
		&findings,
		&updatedAt,
		&importedAt,
	); err != nil {
		return Block{}, err
	}
	b.ContentMD = contentMD.String
	b.PlainText = plainText.String
	b.Findings = findingsFromDB(findings.String)
	if updatedAt.Valid {
		if t, err := parseDBTime(updatedAt.String); err == nil {
			b.UpdatedAt = &t
		}
	}
	if t, err := parseDBTime(importedAt); err == nil {
		b.ImportedAt = t
	}
	return b, nil
}

func scanBlocks(rows *sql.Rows) ([]Block, error) {
	defer rows.Close()

	blocks := make([]Block, 0)
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
