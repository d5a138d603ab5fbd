package xlsxtemplate

import "github.com/xuri/excelize/v2"

// headerFillColor is the light gray applied to written header rows.
const headerFillColor = "D3D3D3"

// newHeaderStyle registers the bold + light-gray style used for the header
// row the exporter writes when IncludeHeaders is on. Template cells keep
// whatever styling they already have.
func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{headerFillColor},
		},
	})
}
