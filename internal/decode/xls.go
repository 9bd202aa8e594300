package decode

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"

	"github.com/joseph-ayodele/xltables/internal/common"
	"github.com/joseph-ayodele/xltables/internal/grid"
)

// compoundFileMagic opens every OLE2 compound file, the container of BIFF workbooks.
var compoundFileMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// readBIFF decodes a legacy .xls workbook.
func readBIFF(data []byte, opts Options) (g grid.Grid, err error) {
	// The BIFF reader panics on some truncated or corrupt streams.
	defer func() {
		if r := recover(); r != nil {
			g, err = grid.Grid{}, common.MalformedInput("open legacy workbook", fmt.Errorf("%v", r))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return grid.Grid{}, common.MalformedInput("open legacy workbook", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return grid.Grid{}, common.MalformedInput("workbook has no sheets", nil)
	}

	ws := wb.GetSheet(0)
	if name := strings.TrimSpace(opts.Sheet); name != "" {
		ws = nil
		for i := 0; i < wb.NumSheets(); i++ {
			if s := wb.GetSheet(i); s != nil && s.Name == name {
				ws = s
				break
			}
		}
		if ws == nil {
			return grid.Grid{}, common.MalformedInput(fmt.Sprintf("sheet %q not found", name), nil)
		}
	}
	if ws == nil {
		return grid.Grid{}, common.MalformedInput("workbook has no sheets", nil)
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for r := 0; r <= int(ws.MaxRow); r++ {
		row := ws.Row(r)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// LastCol may be one past the last cell; the extra blank is trimmed.
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, trimBlankTail(cells))
	}
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return grid.New(rows), nil
}

func trimBlankTail(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}
