package cli

import "github.com/sipsociety/sipcms/internal/richtext"

type SanitizeResponse struct {
	Input    string            `json:"input"`
	Output   string            `json:"output"`
	Changed  bool              `json:"changed"`
	Findings richtext.Findings `json:"findings"`
}

type RenderResponse struct {
	Format string `json:"format"`
	Output string `json:"output"`
}

type RemoveBlockResponse struct {
	RemovedBlockID int64 `json:"removed_block_id"`
}

type ApplyCleanResponse struct {
	Updated int64   `json:"updated"`
	IDs     []int64 `json:"ids,omitempty"`
	All     bool    `json:"all"`
}

type AuditItem struct {
	ID       int64             `json:"id"`
	Page     string            `json:"page"`
	Key      string            `json:"key"`
	Field    string            `json:"field"`
	Findings richtext.Findings `json:"findings"`
}

type AuditResponse struct {
	Checked int         `json:"checked"`
	Unclean int         `json:"unclean"`
	Blocks  []AuditItem `json:"blocks"`
}
