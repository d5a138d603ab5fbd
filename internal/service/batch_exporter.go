// Package service runs batches of view exports: it resolves each selected
// view against the registry, pulls its rows from the data source and hands
// them to the template engine, collecting exactly one outcome per view.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/config"
	"github.com/visheskaras/Postgres-to-excel-for-scada/internal/logger"
	"github.com/visheskaras/Postgres-to-excel-for-scada/pkg/xlsxtemplate"
)

// DataSource is the read-only boundary to the database. Satisfied by
// *database.Client; narrowed here so batch runs can be tested without one.
type DataSource interface {
	FetchView(ctx context.Context, schema, viewName string) (*xlsxtemplate.Table, error)
}

// ProgressFunc receives the zero-based index of the view about to be
// exported, the batch total and the view name. A reporting side channel
// only: exports still run strictly one at a time.
type ProgressFunc func(index, total int, viewName string)

// Options tune one batch run.
type Options struct {
	Schema         string
	SheetName      string
	IncludeHeaders bool
	Progress       ProgressFunc

	// Now overrides the clock used for filename tokens. Tests only.
	Now func() time.Time
}

// ViewOutcome is one view's result within a batch.
type ViewOutcome struct {
	ViewName string
	xlsxtemplate.Outcome
}

// Summary aggregates a batch run. Clean is true only when no view failed;
// skipped (empty-result) views do not dirty the run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Clean     bool
}

// BatchExporter orchestrates sequential exports of configured views.
type BatchExporter struct {
	cfg    *config.AppConfig
	source DataSource
}

// NewBatchExporter wires the orchestrator to its configuration and source.
func NewBatchExporter(cfg *config.AppConfig, source DataSource) *BatchExporter {
	return &BatchExporter{cfg: cfg, source: source}
}

// Run exports the selected views in order and returns one outcome per
// requested name, never omitting any. A failing view does not abort its
// siblings. Cancellation is checked only between iterations: an export in
// progress always completes, and the views left behind get a canceled
// outcome so the sequence still lines up with the request.
func (b *BatchExporter) Run(ctx context.Context, viewNames []string, opts Options) []ViewOutcome {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	total := len(viewNames)
	outcomes := make([]ViewOutcome, 0, total)

	for i, name := range viewNames {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, ViewOutcome{
				ViewName: name,
				Outcome:  xlsxtemplate.Outcome{Message: fmt.Sprintf("canceled: %v", err)},
			})
			continue
		}

		if opts.Progress != nil {
			opts.Progress(i, total, name)
		}

		viewCtx := logger.WithFields(ctx, map[string]interface{}{"view": name})
		outcomes = append(outcomes, ViewOutcome{
			ViewName: name,
			Outcome:  b.exportOne(viewCtx, name, opts, now()),
		})
	}

	return outcomes
}

// exportOne resolves and exports a single view. Every failure comes back as
// a value-typed outcome with a stage-specific reason.
func (b *BatchExporter) exportOne(ctx context.Context, viewName string, opts Options, now time.Time) xlsxtemplate.Outcome {
	entry, ok := b.cfg.Views.Get(viewName)
	if !ok {
		return xlsxtemplate.Outcome{Message: fmt.Sprintf("configuration not found for view %q", viewName)}
	}

	// Check the template before touching the database so a misconfigured
	// view fails without wasting a query round trip.
	templatePath := filepath.Join(b.cfg.TemplatesFolder, entry.TemplateName)
	if _, err := os.Stat(templatePath); err != nil {
		return xlsxtemplate.Outcome{Message: fmt.Sprintf("template not found: %s", templatePath)}
	}

	schema := opts.Schema
	if schema == "" {
		schema = b.cfg.DBSchema
	}

	table, err := b.source.FetchView(ctx, schema, viewName)
	if err != nil {
		logger.ErrorLog(ctx, "fetching view data failed", err)
		return xlsxtemplate.Outcome{Message: fmt.Sprintf("fetching view data: %v", err)}
	}

	filename, err := b.cfg.Views.GenerateOutputFilename(viewName, now)
	if err != nil {
		return xlsxtemplate.Outcome{Message: fmt.Sprintf("resolving output filename: %v", err)}
	}
	outputPath := filepath.Join(b.cfg.OutputFolder, filename)

	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = xlsxtemplate.DefaultSheetName
	}

	exporter := xlsxtemplate.New(templatePath, outputPath,
		xlsxtemplate.WithSheetName(sheetName),
		xlsxtemplate.WithAnchor(entry.StartRow, entry.StartCol),
		xlsxtemplate.WithHeaders(opts.IncludeHeaders),
		xlsxtemplate.WithAutoAdjustColumns(b.cfg.AutoAdjustColumns),
		xlsxtemplate.WithHeaderStyling(b.cfg.PreserveFormatting),
	)

	return exporter.Export(ctx, table)
}

// Summarize aggregates batch outcomes into a single status.
func Summarize(outcomes []ViewOutcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Success:
			s.Succeeded++
		case o.Skipped:
			s.Skipped++
		default:
			s.Failed++
		}
	}
	s.Clean = s.Failed == 0
	return s
}
