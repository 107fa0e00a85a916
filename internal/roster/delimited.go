package roster

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"gradepulse/pkg/errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const maxLineBytes = 1 << 20

type DelimitedReader struct {
	Delimiter rune
}

func (r DelimitedReader) Read(ctx context.Context, data []byte) (*Sheet, error) {
	// BOMOverride switches to UTF-16 when a BOM says so and strips a UTF-8 BOM.
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	sheet := &Sheet{Name: "Sheet1"}
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields := SplitDelimited(scanner.Text(), r.Delimiter)
		row := make(Row, len(fields))
		for i, f := range fields {
			row[i] = TextCell(f)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err)
	}
	return sheet, nil
}

// SplitDelimited splits one line. A quote toggles quoted mode and is dropped;
// the delimiter only separates outside quotes. Fields are trimmed.
func SplitDelimited(line string, delim rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
