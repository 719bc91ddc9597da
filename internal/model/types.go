package model

import (
	"time"

	"github.com/sipsociety/sipcms/internal/richtext"
)

type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputWide  OutputFormat = "wide"
)

// Pages that carry editable content blocks on the site.
var Pages = []string{"home", "about", "career", "contact", "gallery", "menu"}

func IsPage(name string) bool {
	for _, p := range Pages {
		if p == name {
			return true
		}
	}
	return false
}

type Block struct {
	ID         int64             `json:"id"`
	Page       string            `json:"page"`
	Key        string            `json:"key"`
	Field      string            `json:"field"`
	RawHTML    string            `json:"raw_html"`
	CleanHTML  string            `json:"clean_html"`
	ContentMD  string            `json:"content_md,omitempty"`
	PlainText  string            `json:"plain_text,omitempty"`
	Clean      bool              `json:"clean"`
	Findings   richtext.Findings `json:"findings"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
	ImportedAt time.Time         `json:"imported_at"`
}

type BlockInput struct {
	Page      string
	Key       string
	Field     string
	RawHTML   string
	CleanHTML string
	ContentMD string
	PlainText string
	Findings  richtext.Findings
	UpdatedAt *time.Time
}

// ExportBlock is one row of a content export from the hosted backend.
type ExportBlock struct {
	Page      string     `json:"page"`
	Key       string     `json:"key"`
	Field     string     `json:"field"`
	HTML      string     `json:"html"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type Stats struct {
	Blocks  int            `json:"blocks"`
	Clean   int            `json:"clean"`
	Unclean int            `json:"unclean"`
	Imports int            `json:"imports"`
	ByPage  map[string]int `json:"by_page"`
}

type BlockListOptions struct {
	Page   string
	Status string
	Limit  int
}

type SearchOptions struct {
	Query string
	Page  string
	Limit int
}

type ImportResult struct {
	Page     string            `json:"page"`
	Key      string            `json:"key"`
	Field    string            `json:"field"`
	BlockID  int64             `json:"block_id,omitempty"`
	Inserted bool              `json:"inserted"`
	Clean    bool              `json:"clean"`
	Findings richtext.Findings `json:"findings"`
	Error    string            `json:"error,omitempty"`
}

type ImportReport struct {
	RunID     string         `json:"run_id"`
	Source    string         `json:"source"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
	Total     int            `json:"total"`
	Inserted  int            `json:"inserted"`
	Updated   int            `json:"updated"`
	Unclean   int            `json:"unclean"`
	Failed    int            `json:"failed"`
	Results   []ImportResult `json:"results"`
	Warnings  []string       `json:"warnings,omitempty"`
}

type ImportRun struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Total     int       `json:"total"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Unclean   int       `json:"unclean"`
	Failed    int       `json:"failed"`
}
