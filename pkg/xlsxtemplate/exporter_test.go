package xlsxtemplate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildTemplate writes a minimal template workbook: a title in A1 and
// optional stale data rows starting at row 2 of the default sheet.
func buildTemplate(t *testing.T, dir string, staleRows int) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", "Report Title"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < staleRows; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue("Sheet1", cell, fmt.Sprintf("stale-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func makeTable(rows, cols int) *Table {
	table := &Table{}
	for c := 0; c < cols; c++ {
		table.Columns = append(table.Columns, fmt.Sprintf("col_%d", c))
	}
	for r := 0; r < rows; r++ {
		row := make([]interface{}, cols)
		for c := 0; c < cols; c++ {
			row[c] = fmt.Sprintf("r%d_c%d", r, c)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func TestExportRoundTrip(t *testing.T) {
	for _, rowCount := range []int{1, 1000} {
		t.Run(fmt.Sprintf("%d_rows", rowCount), func(t *testing.T) {
			dir := t.TempDir()
			template := buildTemplate(t, dir, 0)
			output := filepath.Join(dir, "out", "result.xlsx")
			table := makeTable(rowCount, 3)

			outcome := New(template, output).Export(context.Background(), table)
			if !outcome.Success {
				t.Fatalf("export failed: %s", outcome.Message)
			}
			if outcome.RecordCount != rowCount {
				t.Fatalf("RecordCount = %d, want %d", outcome.RecordCount, rowCount)
			}
			if outcome.OutputPath != output {
				t.Fatalf("OutputPath = %q, want %q", outcome.OutputPath, output)
			}

			f, err := excelize.OpenFile(output)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			rows, err := f.GetRows(DefaultSheetName)
			if err != nil {
				t.Fatal(err)
			}
			// Title row plus the data region, nothing else.
			if len(rows) != 1+rowCount {
				t.Fatalf("sheet has %d rows, want %d", len(rows), 1+rowCount)
			}
			for r := 0; r < rowCount; r++ {
				for c := 0; c < 3; c++ {
					want := fmt.Sprintf("r%d_c%d", r, c)
					if got := rows[r+1][c]; got != want {
						t.Fatalf("cell (%d,%d) = %q, want %q", r+2, c+1, got, want)
					}
				}
			}
		})
	}
}

func TestExportEmptyTable(t *testing.T) {
	dir := t.TempDir()
	template := buildTemplate(t, dir, 3)
	output := filepath.Join(dir, "out.xlsx")

	outcome := New(template, output).Export(context.Background(), makeTable(0, 2))

	if outcome.Success {
		t.Error("empty table must not report success")
	}
	if !outcome.Skipped {
		t.Error("empty table must be reported as skipped, not failed")
	}
	if outcome.Message != MsgNoData {
		t.Errorf("Message = %q, want %q", outcome.Message, MsgNoData)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no file must be written for an empty table")
	}
}

func TestExportClearsStaleRows(t *testing.T) {
	dir := t.TempDir()
	template := buildTemplate(t, dir, 5)
	output := filepath.Join(dir, "out.xlsx")

	outcome := New(template, output).Export(context.Background(), makeTable(2, 2))
	if !outcome.Success {
		t.Fatalf("export failed: %s", outcome.Message)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(DefaultSheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("sheet has %d rows, want 3 (title + 2 data rows)", len(rows))
	}
	// The title above the anchor survives untouched.
	if rows[0][0] != "Report Title" {
		t.Errorf("title row = %q, want \"Report Title\"", rows[0][0])
	}
	for _, row := range rows[1:] {
		if strings.HasPrefix(row[0], "stale-") {
			t.Errorf("stale row %v survived the clear", row)
		}
	}
}

func TestExportWithHeaders(t *testing.T) {
	dir := t.TempDir()
	template := buildTemplate(t, dir, 0)
	output := filepath.Join(dir, "out.xlsx")
	table := makeTable(2, 2)

	outcome := New(template, output, WithHeaders(true)).Export(context.Background(), table)
	if !outcome.Success {
		t.Fatalf("export failed: %s", outcome.Message)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Header row at the anchor, data shifted down by one.
	for c, name := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(c+1, 2)
		got, err := f.GetCellValue(DefaultSheetName, cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != name {
			t.Errorf("header cell %s = %q, want %q", cell, got, name)
		}
	}
	got, err := f.GetCellValue(DefaultSheetName, "A3")
	if err != nil {
		t.Fatal(err)
	}
	if got != "r0_c0" {
		t.Errorf("first data cell = %q, want r0_c0", got)
	}

	// The header row carries a style; the data row keeps the default.
	headerStyle, err := f.GetCellStyle(DefaultSheetName, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if headerStyle == 0 {
		t.Error("header cell has no style applied")
	}
}

func TestExportCustomAnchor(t *testing.T) {
	dir := t.TempDir()
	template := buildTemplate(t, dir, 0)
	output := filepath.Join(dir, "out.xlsx")

	// Anchor B3: first value lands in column 2, row 3.
	outcome := New(template, output, WithAnchor(3, 2)).Export(context.Background(), makeTable(1, 2))
	if !outcome.Success {
		t.Fatalf("export failed: %s", outcome.Message)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for cell, want := range map[string]string{"B3": "r0_c0", "C3": "r0_c1"} {
		got, err := f.GetCellValue(DefaultSheetName, cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestExportSheetFallback(t *testing.T) {
	// The template has no sheet named "Data"; the active sheet is adopted
	// and renamed rather than failing.
	dir := t.TempDir()
	template := buildTemplate(t, dir, 0)
	output := filepath.Join(dir, "out.xlsx")

	outcome := New(template, output).Export(context.Background(), makeTable(1, 1))
	if !outcome.Success {
		t.Fatalf("export failed: %s", outcome.Message)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(DefaultSheetName)
	if err != nil {
		t.Fatal(err)
	}
	if idx == -1 {
		t.Errorf("sheet %q missing from output, sheets: %v", DefaultSheetName, f.GetSheetList())
	}
}

func TestExportTemplateNotFound(t *testing.T) {
	dir := t.TempDir()
	outcome := New(filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "out.xlsx")).
		Export(context.Background(), makeTable(1, 1))

	if outcome.Success || outcome.Skipped {
		t.Fatal("missing template must fail the export")
	}
	if !strings.Contains(outcome.Message, "template not found") {
		t.Errorf("Message = %q, want template-not-found reason", outcome.Message)
	}
}

func TestExportTemplateCorrupt(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "garbage.xlsx")
	if err := os.WriteFile(template, []byte("this is not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome := New(template, filepath.Join(dir, "out.xlsx")).
		Export(context.Background(), makeTable(1, 1))

	if outcome.Success || outcome.Skipped {
		t.Fatal("corrupt template must fail the export")
	}
	if !strings.Contains(outcome.Message, "template corrupt") {
		t.Errorf("Message = %q, want template-corrupt reason", outcome.Message)
	}
}

func TestAutoAdjustColumnWidths(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	// Long title above the anchor: counts toward the width, capped at the max.
	if err := f.SetCellValue("Sheet1", "A1", strings.Repeat("x", 120)); err != nil {
		t.Fatal(err)
	}
	template := filepath.Join(dir, "template.xlsx")
	if err := f.SaveAs(template); err != nil {
		t.Fatal(err)
	}
	f.Close()

	output := filepath.Join(dir, "out.xlsx")
	table := &Table{
		Columns: []string{"a", "b"},
		Rows:    [][]interface{}{{"short", "medium-value"}},
	}
	outcome := New(template, output).Export(context.Background(), table)
	if !outcome.Success {
		t.Fatalf("export failed: %s", outcome.Message)
	}

	out, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	widthA, err := out.GetColWidth(DefaultSheetName, "A")
	if err != nil {
		t.Fatal(err)
	}
	if widthA != DefaultMaxColumnWidth {
		t.Errorf("column A width = %v, want capped at %d", widthA, DefaultMaxColumnWidth)
	}

	widthB, err := out.GetColWidth(DefaultSheetName, "B")
	if err != nil {
		t.Fatal(err)
	}
	if want := float64(len("medium-value") + 2); widthB != want {
		t.Errorf("column B width = %v, want %v", widthB, want)
	}

	// Adjustment must not change cell values.
	got, err := out.GetCellValue(DefaultSheetName, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "short" {
		t.Errorf("cell A2 = %q, want \"short\"", got)
	}
}

func TestExportMixedValueTypes(t *testing.T) {
	dir := t.TempDir()
	template := buildTemplate(t, dir, 0)
	output := filepath.Join(dir, "out.xlsx")

	table := &Table{
		Columns: []string{"tag", "value", "note"},
		Rows: [][]interface{}{
			{"pressure", 42, nil},
			{[]byte("temperature"), 3.5, "ok"},
		},
	}
	outcome := New(template, output).Export(context.Background(), table)
	if !outcome.Success {
		t.Fatalf("export failed: %s", outcome.Message)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	checks := map[string]string{
		"A2": "pressure",
		"B2": "42",
		"C2": "",
		"A3": "temperature",
		"B3": "3.5",
		"C3": "ok",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(DefaultSheetName, cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}
