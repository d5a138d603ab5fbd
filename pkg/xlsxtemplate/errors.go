package xlsxtemplate

import "errors"

// ErrTemplateNotFound indicates the template path does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// ErrTemplateCorrupt indicates the template could not be parsed as a workbook.
var ErrTemplateCorrupt = errors.New("template corrupt")

// ErrSave indicates the output file could not be written.
var ErrSave = errors.New("save failed")

// MsgNoData is the Outcome message for an empty table. Not a failure in the
// error-taxonomy sense: nothing was exported and no file was written.
const MsgNoData = "no data to export"
