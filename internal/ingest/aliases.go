package ingest

import (
	"github.com/sipsociety/sipcms/internal/config"
	"github.com/sipsociety/sipcms/internal/model"
	"github.com/sipsociety/sipcms/internal/store"
)

type Config = config.Config
type Store = store.Store
type ExportBlock = model.ExportBlock
type ImportResult = model.ImportResult
type ImportReport = model.ImportReport
type BlockInput = model.BlockInput
