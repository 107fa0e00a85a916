package roster

import (
	"context"
	"path/filepath"
	"strings"

	"gradepulse/pkg/errors"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// SheetReader turns raw upload bytes into a typed sheet.
type SheetReader interface {
	Read(ctx context.Context, data []byte) (*Sheet, error)
}

func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	}
	return "", errors.ErrUnsupportedFormat
}

func ReaderFor(f Format) SheetReader {
	switch f {
	case FormatXLSX:
		return XLSXReader{}
	case FormatXLS:
		return XLSReader{}
	case FormatTSV:
		return DelimitedReader{Delimiter: '\t'}
	}
	return DelimitedReader{Delimiter: ','}
}
