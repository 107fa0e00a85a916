package roster

import (
	"bytes"
	"context"
	"fmt"

	"gradepulse/pkg/errors"

	"github.com/extrame/xls"
)

// XLSReader reads legacy BIFF workbooks. Cells come back as formatted text.
type XLSReader struct {
	Charset string
}

func (r XLSReader) Read(ctx context.Context, data []byte) (*Sheet, error) {
	charset := r.Charset
	if charset == "" {
		charset = "utf-8"
	}

	book, err := xls.OpenReader(bytes.NewReader(data), charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}

	ws := book.GetSheet(0)
	if ws == nil {
		return nil, errors.ErrInvalidFileFormat
	}

	sheet := &Sheet{Name: ws.Name}
	for i := 0; i <= int(ws.MaxRow); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := ws.Row(i)
		if src == nil {
			sheet.Rows = append(sheet.Rows, Row{})
			continue
		}
		row := make(Row, 0, src.LastCol())
		for c := 0; c < src.LastCol(); c++ {
			if v := src.Col(c); v != "" {
				row = append(row, TextCell(v))
			} else {
				row = append(row, Cell{})
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	// A workbook with nothing in it still reports row 0.
	if len(sheet.Rows) == 1 && len(sheet.Rows[0]) == 0 {
		sheet.Rows = nil
	}
	return sheet, nil
}
