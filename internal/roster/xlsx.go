package roster

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gradepulse/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// Built-in number formats that render as dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

type XLSXReader struct{}

func (XLSXReader) Read(ctx context.Context, data []byte) (*Sheet, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrInvalidFileFormat
	}
	name := sheets[0]

	rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}

	conv := &xlsxCells{file: file, sheet: name, dateStyles: map[int]bool{}}
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		conv.date1904 = *props.Date1904
	}

	sheet := &Sheet{Name: name, Rows: make([]Row, 0, len(rows))}
	for r, values := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := make(Row, len(values))
		for c, raw := range values {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
			}
			row[c] = conv.cell(axis, raw)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

type xlsxCells struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (x *xlsxCells) cell(axis, raw string) Cell {
	if raw == "" {
		return Cell{}
	}

	typ, err := x.file.GetCellType(x.sheet, axis)
	if err != nil {
		return TextCell(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return DateCell(t, 0)
		}
		return TextCell(raw)
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return TextCell(raw)
		}
		if x.isDateStyled(axis) {
			if t, err := excelize.ExcelDateToTime(n, x.date1904); err == nil {
				return DateCell(t, n)
			}
		}
		return NumberCell(n)
	}
	return TextCell(raw)
}

func (x *xlsxCells) isDateStyled(axis string) bool {
	idx, err := x.file.GetCellStyle(x.sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	if cached, ok := x.dateStyles[idx]; ok {
		return cached
	}

	isDate := false
	if style, err := x.file.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = builtinDateFormats[style.NumFmt]
		}
	}
	x.dateStyles[idx] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format shows day, month or year parts.
// Quoted literals, escaped characters and [bracketed] sections are ignored.
func isDateFormatCode(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, ch := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case ch == 'd' || ch == 'm' || ch == 'y':
			return true
		}
	}
	return false
}
