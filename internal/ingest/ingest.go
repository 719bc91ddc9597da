// Package ingest loads content exports into the local snapshot store,
// sanitizing every block on the way in.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sipsociety/sipcms/internal/model"
	"github.com/sipsociety/sipcms/internal/richtext"
)

type Importer struct {
	store    *Store
	renderer *Renderer
	cfg      Config
	log      *zap.Logger
}

type importProgressFn func(done, total int, result ImportResult)

func NewImporter(store *Store, renderer *Renderer, cfg Config, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		store:    store,
		renderer: renderer,
		cfg:      cfg,
		log:      log,
	}
}

func (im *Importer) Import(ctx context.Context, source string, blocks []ExportBlock) (ImportReport, error) {
	return im.ImportWithProgress(ctx, source, blocks, nil)
}

// ImportWithProgress stores every block and records the run. Per-block
// failures are reported in the results and never abort the run.
func (im *Importer) ImportWithProgress(ctx context.Context, source string, blocks []ExportBlock, onResult importProgressFn) (ImportReport, error) {
	report := ImportReport{
		RunID:     uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Results:   make([]ImportResult, 0, len(blocks)),
	}
	log := im.log.With(zap.String("run_id", report.RunID), zap.String("source", source))
	log.Info("import started", zap.Int("blocks", len(blocks)))

	if len(blocks) > 0 {
		report.Results = im.importAll(ctx, blocks, onResult)
	}
	if err := ctx.Err(); err != nil {
		return ImportReport{}, err
	}

	for _, r := range report.Results {
		switch {
		case r.Error != "":
			report.Failed++
		case r.Inserted:
			report.Inserted++
		default:
			report.Updated++
		}
		if r.Error == "" && !r.Clean {
			report.Unclean++
		}
	}
	report.Total = len(report.Results)
	report.EndedAt = time.Now().UTC()

	if err := im.store.RecordImport(ctx, model.ImportRun{
		ID:        report.RunID,
		Source:    report.Source,
		StartedAt: report.StartedAt,
		EndedAt:   report.EndedAt,
		Total:     report.Total,
		Inserted:  report.Inserted,
		Updated:   report.Updated,
		Unclean:   report.Unclean,
		Failed:    report.Failed,
	}); err != nil {
		log.Warn("record import run failed", zap.Error(err))
		report.Warnings = append(report.Warnings, fmt.Sprintf("record import run failed: %v", err))
	}

	log.Info("import finished",
		zap.Int("total", report.Total),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("unclean", report.Unclean),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.EndedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

// importAll returns results in input order regardless of completion order.
func (im *Importer) importAll(ctx context.Context, blocks []ExportBlock, onResult importProgressFn) []ImportResult {
	total := len(blocks)
	results := make([]ImportResult, total)
	if total == 1 {
		results[0] = im.importSingle(ctx, blocks[0])
		if onResult != nil {
			onResult(1, 1, results[0])
		}
		return results
	}

	concurrency := im.cfg.ImportConcurrency
	if concurrency < 1 {
		concurrency = 4
	}

	type done struct {
		index  int
		result ImportResult
	}
	jobs := make(chan int)
	out := make(chan done, total)
	wg := sync.WaitGroup{}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out <- done{index: idx, result: im.importSingle(ctx, blocks[idx])}
			}
		}()
	}

	go func() {
		for i := range blocks {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var count int64
	for d := range out {
		results[d.index] = d.result
		if onResult != nil {
			onResult(int(atomic.AddInt64(&count, 1)), total, d.result)
		}
	}
	return results
}

func (im *Importer) importSingle(ctx context.Context, b ExportBlock) ImportResult {
	result := ImportResult{
		Page:  strings.TrimSpace(b.Page),
		Key:   strings.TrimSpace(b.Key),
		Field: strings.TrimSpace(b.Field),
	}
	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	clean, findings := richtext.Analyze(b.HTML)
	result.Clean = clean == b.HTML
	result.Findings = findings

	id, inserted, err := im.store.UpsertBlock(ctx, BlockInput{
		Page:      result.Page,
		Key:       result.Key,
		Field:     result.Field,
		RawHTML:   b.HTML,
		CleanHTML: clean,
		ContentMD: im.renderer.HTMLToMarkdown(clean),
		PlainText: richtext.PlainText(clean),
		Findings:  findings,
		UpdatedAt: b.UpdatedAt,
	})
	if err != nil {
		result.Error = err.Error()
		im.log.Warn("block rejected",
			zap.String("page", result.Page),
			zap.String("key", result.Key),
			zap.String("field", result.Field),
			zap.Error(err),
		)
		return result
	}
	result.BlockID = id
	result.Inserted = inserted

	if !result.Clean {
		im.log.Debug("block needs sanitizing",
			zap.Int64("block_id", id),
			zap.Strings("tags", findings.Tags),
			zap.Strings("attrs", findings.Attrs),
			zap.Strings("styles", findings.Styles),
			zap.Strings("hrefs", findings.Hrefs),
		)
	}
	return result
}
