package store

import "github.com/sipsociety/sipcms/internal/model"

type Block = model.Block
type BlockInput = model.BlockInput
type Stats = model.Stats
type BlockListOptions = model.BlockListOptions
type SearchOptions = model.SearchOptions
type ImportRun = model.ImportRun
