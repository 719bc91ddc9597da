package cli

import "github.com/sipsociety/sipcms/internal/model"

type OutputFormat = model.OutputFormat
type Block = model.Block
type Stats = model.Stats
type ImportRun = model.ImportRun
type ImportResult = model.ImportResult
type ImportReport = model.ImportReport
type BlockListOptions = model.BlockListOptions
type SearchOptions = model.SearchOptions

const (
	OutputTable = model.OutputTable
	OutputJSON  = model.OutputJSON
	OutputWide  = model.OutputWide
)
