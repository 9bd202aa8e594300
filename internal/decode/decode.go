// Package decode turns uploaded workbook bytes into a grid of cell strings.
package decode

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/xltables/constants"
	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/grid"
)

// Options selects what is read from the workbook.
type Options struct {
	// Sheet is the worksheet to read; empty means the first sheet.
	Sheet string
	// Formatted returns cell values with number formats applied instead of the
	// stored raw values. Raw values keep numbers parseable ("1000" not "1,000").
	// Legacy .xls workbooks always come back as the BIFF reader renders them.
	Formatted bool
}

// CheckFilename rejects uploads whose extension is not a supported workbook.
func CheckFilename(name string) error {
	ext := constants.NormalizeExt(filepath.Ext(name))
	if _, ok := constants.WorkbookExtensions[ext]; ok {
		return nil
	}
	return common.MalformedInput(fmt.Sprintf("unsupported file %q, only %s allowed", name, constants.WorkbookExtList()), nil)
}

// Bytes decodes an in-memory workbook. Legacy BIFF files (.xls) are recognised
// by their compound-file signature; everything else is read as OOXML. Rows are
// padded so the grid is rectangular; empty cells are "".
func Bytes(data []byte, opts Options) (grid.Grid, error) {
	if bytes.HasPrefix(data, compoundFileMagic) {
		return readBIFF(data, opts)
	}
	return readOOXML(bytes.NewReader(data), opts)
}

// Reader decodes a workbook read from r. See Bytes.
func Reader(r io.Reader, opts Options) (grid.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return grid.Grid{}, common.MalformedInput("read workbook", err)
	}
	return Bytes(data, opts)
}

func readOOXML(r io.Reader, opts Options) (grid.Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return grid.Grid{}, common.MalformedInput("open workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheet := strings.TrimSpace(opts.Sheet)
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return grid.Grid{}, common.MalformedInput("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		return grid.Grid{}, common.MalformedInput(fmt.Sprintf("sheet %q not found", sheet), nil)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: !opts.Formatted})
	if err != nil {
		return grid.Grid{}, common.MalformedInput("read sheet "+sheet, err)
	}
	return grid.New(rows), nil
}
