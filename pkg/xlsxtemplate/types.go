// Package xlsxtemplate fills pre-formatted Excel templates with tabular
// data. It opens an existing workbook, removes the stale data region below
// a configurable anchor cell, writes fresh rows there and saves the result
// as a new file, leaving everything above the anchor untouched.
package xlsxtemplate

// Table is a rectangular, column-ordered result set. Every row must have
// exactly len(Columns) values. Values are plain scalars: string, integer,
// float, time.Time or nil.
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t.RowCount() == 0
}

// Config holds the settings for one export run.
type Config struct {
	TemplatePath string
	OutputPath   string

	// SheetName selects the target sheet. A missing sheet is not an
	// error: the active sheet is adopted and renamed to SheetName.
	SheetName string

	// StartRow/StartCol anchor the data region (1-based). Row 1 is
	// typically reserved for the template's own headers.
	StartRow int
	StartCol int

	ClearExisting     bool
	IncludeHeaders    bool
	AutoAdjustColumns bool

	// StyleHeaders applies bold + light gray fill to the header row
	// written by IncludeHeaders. Off when the caller wants the template
	// formatting left entirely alone.
	StyleHeaders bool

	MaxColumnWidth int
}

// Outcome is the value-typed result of one export. It never carries a
// panic or raw error across the caller boundary.
type Outcome struct {
	Success     bool
	Skipped     bool
	Message     string
	OutputPath  string
	RecordCount int
}

// Option configures an Exporter.
type Option func(*Config)

// WithSheetName sets the target sheet name.
func WithSheetName(name string) Option {
	return func(c *Config) { c.SheetName = name }
}

// WithAnchor sets the 1-based cell the data region starts at.
func WithAnchor(row, col int) Option {
	return func(c *Config) {
		if row >= 1 {
			c.StartRow = row
		}
		if col >= 1 {
			c.StartCol = col
		}
	}
}

// WithHeaders toggles writing column names as a leading row.
func WithHeaders(include bool) Option {
	return func(c *Config) { c.IncludeHeaders = include }
}

// WithClearExisting toggles removal of the stale data region before writing.
func WithClearExisting(clear bool) Option {
	return func(c *Config) { c.ClearExisting = clear }
}

// WithAutoAdjustColumns toggles column width fitting after the write.
func WithAutoAdjustColumns(adjust bool) Option {
	return func(c *Config) { c.AutoAdjustColumns = adjust }
}

// WithHeaderStyling toggles the bold/gray styling of the written header row.
func WithHeaderStyling(style bool) Option {
	return func(c *Config) { c.StyleHeaders = style }
}

// WithMaxColumnWidth caps the width applied by auto adjustment.
func WithMaxColumnWidth(width int) Option {
	return func(c *Config) {
		if width > 0 {
			c.MaxColumnWidth = width
		}
	}
}
