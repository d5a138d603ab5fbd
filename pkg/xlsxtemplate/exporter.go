package xlsxtemplate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the sheet targeted when the caller does not pick one.
const DefaultSheetName = "Data"

// DefaultMaxColumnWidth caps auto-adjusted column widths.
const DefaultMaxColumnWidth = 50

// Exporter writes one table into one template. It is single-use per export
// call and not safe for concurrent use: the open workbook is mutated in
// place and the clear/write steps depend on positional state.
type Exporter struct {
	cfg Config
}

// New creates an exporter for the given template and output paths.
func New(templatePath, outputPath string, opts ...Option) *Exporter {
	cfg := Config{
		TemplatePath:      templatePath,
		OutputPath:        outputPath,
		SheetName:         DefaultSheetName,
		StartRow:          2,
		StartCol:          1,
		ClearExisting:     true,
		IncludeHeaders:    false,
		AutoAdjustColumns: true,
		StyleHeaders:      true,
		MaxColumnWidth:    DefaultMaxColumnWidth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Exporter{cfg: cfg}
}

// Config returns a copy of the exporter's resolved configuration.
func (e *Exporter) Config() Config {
	return e.cfg
}

// Export runs the full load→clear→write→adjust→save pipeline. Any failing
// step short-circuits into a failed Outcome with a stage-specific message;
// nothing is raised past this boundary. An empty table is a distinct
// skipped outcome and leaves the output path untouched.
func (e *Exporter) Export(ctx context.Context, table *Table) Outcome {
	log := zerolog.Ctx(ctx)

	if table.Empty() {
		log.Info().Str("template", e.cfg.TemplatePath).Msg("nothing to export")
		return Outcome{Skipped: true, Message: MsgNoData}
	}

	f, err := e.loadTemplate()
	if err != nil {
		return failure("loading template: %v", err)
	}
	defer f.Close()

	if e.cfg.ClearExisting {
		if err := e.clearExisting(f); err != nil {
			return failure("clearing existing data: %v", err)
		}
	}

	if err := e.writeData(f, table); err != nil {
		return failure("writing data: %v", err)
	}

	if e.cfg.AutoAdjustColumns {
		// Cosmetic step: a failure here is logged and never fails the export.
		if err := e.autoAdjustColumns(f, len(table.Columns)); err != nil {
			log.Warn().Err(err).Msg("column width adjustment failed")
		}
	}

	if err := e.save(f); err != nil {
		return failure("saving workbook: %v", err)
	}

	log.Info().
		Str("output", e.cfg.OutputPath).
		Int("rows", table.RowCount()).
		Msg("export complete")

	return Outcome{
		Success:     true,
		Message:     "export complete",
		OutputPath:  e.cfg.OutputPath,
		RecordCount: table.RowCount(),
	}
}

func failure(format string, args ...interface{}) Outcome {
	return Outcome{Message: fmt.Sprintf(format, args...)}
}

// loadTemplate opens the template workbook and ensures the target sheet
// exists. A missing sheet name silently repurposes the active sheet and
// renames it, matching how operators expect hand-built templates to behave.
func (e *Exporter) loadTemplate() (*excelize.File, error) {
	if _, err := os.Stat(e.cfg.TemplatePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, e.cfg.TemplatePath)
	}

	f, err := excelize.OpenFile(e.cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateCorrupt, e.cfg.TemplatePath, err)
	}

	idx, err := f.GetSheetIndex(e.cfg.SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrTemplateCorrupt, err)
	}
	if idx == -1 {
		active := f.GetSheetName(f.GetActiveSheetIndex())
		if err := f.SetSheetName(active, e.cfg.SheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("renaming sheet %q: %w", active, err)
		}
	}

	return f, nil
}

// clearExisting deletes every row from the anchor row through the sheet's
// last row. Deletion shifts rows below upward, so it walks bottom-up; rows
// above the anchor are never touched. Fewer rows than the anchor is a no-op.
func (e *Exporter) clearExisting(f *excelize.File) error {
	rows, err := f.GetRows(e.cfg.SheetName)
	if err != nil {
		return err
	}

	for r := len(rows); r >= e.cfg.StartRow; r-- {
		if err := f.RemoveRow(e.cfg.SheetName, r); err != nil {
			return fmt.Errorf("removing row %d: %w", r, err)
		}
	}
	return nil
}

// writeData places the table into the sheet starting at the anchor cell.
// Pure value placement: no formulas, no coercion beyond what the cell
// representation accepts.
func (e *Exporter) writeData(f *excelize.File, table *Table) error {
	rowNum := e.cfg.StartRow

	if e.cfg.IncludeHeaders {
		headerStyle := 0
		if e.cfg.StyleHeaders {
			id, err := newHeaderStyle(f)
			if err != nil {
				return fmt.Errorf("creating header style: %w", err)
			}
			headerStyle = id
		}

		for colIdx, name := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(e.cfg.StartCol+colIdx, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(e.cfg.SheetName, cell, name); err != nil {
				return fmt.Errorf("setting header %q: %w", name, err)
			}
			if headerStyle != 0 {
				if err := f.SetCellStyle(e.cfg.SheetName, cell, cell, headerStyle); err != nil {
					return fmt.Errorf("styling header %q: %w", name, err)
				}
			}
		}
		rowNum++
	}

	for _, row := range table.Rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(e.cfg.StartCol+colIdx, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(e.cfg.SheetName, cell, cellValue(value)); err != nil {
				return fmt.Errorf("setting cell %s: %w", cell, err)
			}
		}
		rowNum++
	}

	return nil
}

// cellValue maps a table value to what excelize accepts. NULLs become empty
// cells; byte slices are the driver's representation of text.
func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	default:
		return v
	}
}

// autoAdjustColumns sets each touched column's width to the longest
// displayed value plus padding, capped at MaxColumnWidth. Template cells
// above the data region count toward the maximum so titles stay visible.
func (e *Exporter) autoAdjustColumns(f *excelize.File, columnCount int) (err error) {
	// Width computation is cosmetic; a pathological cell value must not
	// take the export down with it.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("column adjustment panicked: %v", r)
		}
	}()

	cols, err := f.GetCols(e.cfg.SheetName)
	if err != nil {
		return err
	}

	for i := 0; i < columnCount; i++ {
		colNum := e.cfg.StartCol + i
		maxLen := 0
		if colNum-1 < len(cols) {
			for _, cell := range cols[colNum-1] {
				if n := len([]rune(cell)); n > maxLen {
					maxLen = n
				}
			}
		}

		width := float64(maxLen + 2)
		if width > float64(e.cfg.MaxColumnWidth) {
			width = float64(e.cfg.MaxColumnWidth)
		}

		colName, err := excelize.ColumnNumberToName(colNum)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(e.cfg.SheetName, colName, colName, width); err != nil {
			return err
		}
	}
	return nil
}

// save persists the workbook, creating the destination directory if needed.
func (e *Exporter) save(f *excelize.File) error {
	if dir := filepath.Dir(e.cfg.OutputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrSave, err)
		}
	}
	if err := f.SaveAs(e.cfg.OutputPath); err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}
