package todo

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// fakeSheet is an in-memory grid implementing sheets.API, close enough to
// the real values semantics for the store tests: zero-based storage,
// one-based A1 addressing, open-ended ranges.
type fakeSheet struct {
	cells   [][]interface{}
	formats []string

	copyFormatErr error
	calls         []string
}

const fakeSheetID = int64(11)

var a1Ref = regexp.MustCompile(`^([A-Z]+)([0-9]*)$`)

func colIndex(letters string) int {
	n := 0
	for _, r := range letters {
		n = n*26 + int(r-'A') + 1
	}
	return n - 1
}

// parseA1 returns zero-based start/end column and row; endRow is -1 for
// open-ended ranges like A3:C.
func parseA1(rng string) (startCol, startRow, endCol, endRow int) {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	parts := strings.SplitN(rng, ":", 2)
	m := a1Ref.FindStringSubmatch(parts[0])
	startCol = colIndex(m[1])
	startRow = 0
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		startRow = n - 1
	}
	if len(parts) == 1 {
		return startCol, startRow, startCol, startRow
	}
	m = a1Ref.FindStringSubmatch(parts[1])
	endCol = colIndex(m[1])
	endRow = -1
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		endRow = n - 1
	}
	return startCol, startRow, endCol, endRow
}

func (f *fakeSheet) grow(rows, cols int) {
	for len(f.cells) < rows {
		f.cells = append(f.cells, nil)
		f.formats = append(f.formats, "")
	}
	for i := range f.cells {
		for len(f.cells[i]) < cols {
			f.cells[i] = append(f.cells[i], "")
		}
	}
}

func (f *fakeSheet) GetValues(_ context.Context, _, a1Range string) ([][]interface{}, error) {
	f.calls = append(f.calls, "get "+a1Range)
	startCol, startRow, endCol, endRow := parseA1(a1Range)
	if endRow < 0 || endRow >= len(f.cells) {
		endRow = len(f.cells) - 1
	}
	var out [][]interface{}
	for r := startRow; r <= endRow && r < len(f.cells); r++ {
		row := f.cells[r]
		var cells []interface{}
		for c := startCol; c <= endCol && c < len(row); c++ {
			cells = append(cells, row[c])
		}
		out = append(out, cells)
	}
	return out, nil
}

func (f *fakeSheet) UpdateValues(_ context.Context, _, a1Range string, values [][]interface{}, _ bool) error {
	f.calls = append(f.calls, "update "+a1Range)
	startCol, startRow, _, _ := parseA1(a1Range)
	for i, row := range values {
		f.grow(startRow+i+1, startCol+len(row))
		copy(f.cells[startRow+i][startCol:], row)
	}
	return nil
}

func (f *fakeSheet) AppendValues(_ context.Context, _, a1Range string, values [][]interface{}) error {
	f.calls = append(f.calls, "append "+a1Range)
	for _, row := range values {
		f.cells = append(f.cells, append([]interface{}{}, row...))
		f.formats = append(f.formats, "")
	}
	return nil
}

func (f *fakeSheet) ClearValues(_ context.Context, _, a1Range string) error {
	f.calls = append(f.calls, "clear "+a1Range)
	startCol, startRow, endCol, endRow := parseA1(a1Range)
	if endRow < 0 {
		endRow = len(f.cells) - 1
	}
	for r := startRow; r <= endRow && r < len(f.cells); r++ {
		for c := startCol; c <= endCol && c < len(f.cells[r]); c++ {
			f.cells[r][c] = ""
		}
	}
	return nil
}

func (f *fakeSheet) SheetID(_ context.Context, _, title string) (int64, error) {
	f.calls = append(f.calls, "sheetid "+title)
	return fakeSheetID, nil
}

func (f *fakeSheet) InsertRows(_ context.Context, _ string, sheetID, startRow, endRow int64) error {
	f.calls = append(f.calls, fmt.Sprintf("insert %d:%d", startRow, endRow))
	if sheetID != fakeSheetID {
		return fmt.Errorf("unknown sheet id %d", sheetID)
	}
	count := int(endRow - startRow)
	at := int(startRow)
	f.grow(at, 0)
	blankRows := make([][]interface{}, count)
	blankFormats := make([]string, count)
	f.cells = append(f.cells[:at], append(blankRows, f.cells[at:]...)...)
	f.formats = append(f.formats[:at], append(blankFormats, f.formats[at:]...)...)
	return nil
}

func (f *fakeSheet) CopyRowFormat(_ context.Context, _ string, sheetID, srcRow, dstRow, _, _ int64) error {
	f.calls = append(f.calls, fmt.Sprintf("copyformat %d->%d", srcRow, dstRow))
	if f.copyFormatErr != nil {
		return f.copyFormatErr
	}
	f.grow(int(srcRow)+1, 0)
	f.grow(int(dstRow)+1, 0)
	f.formats[dstRow] = f.formats[srcRow]
	return nil
}

// setRow seeds a one-based row.
func (f *fakeSheet) setRow(row int, values ...interface{}) {
	f.grow(row, len(values))
	copy(f.cells[row-1], values)
}

func (f *fakeSheet) row(row int) []interface{} {
	if row-1 >= len(f.cells) {
		return nil
	}
	return f.cells[row-1]
}
