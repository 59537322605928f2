package catalog

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// minXLSXLen is the size of the smallest zip container excelize will open.
const minXLSXLen = 22

// ParseXLSX reads the first worksheet of a spreadsheet's XLSX export using
// the same row layout and error kinds as ParseGviz.
func ParseXLSX(raw []byte, opts ParseOptions) ([]Product, error) {
	if len(raw) < minXLSXLen {
		return nil, &ParseError{Kind: ParseEmpty}
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Kind: ParseMalformed, Cause: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Kind: ParseInvalidShape}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Kind: ParseInvalidShape, Cause: err}
	}

	return buildCatalog(rows, opts)
}
