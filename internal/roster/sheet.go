package roster

import (
	"strconv"
	"strings"
	"time"
)

type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellNumber
	CellBool
	CellDate
)

// Cell is a single typed spreadsheet value. Date cells keep their serial in Number.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
	Date   time.Time
}

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }
func BoolCell(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }
func DateCell(t time.Time, serial float64) Cell {
	return Cell{Kind: CellDate, Date: t, Number: serial}
}

// StringValue renders the cell the way the string extraction rules require:
// trimmed text, whole numbers for numeric cells, true/false for booleans.
func (c Cell) StringValue() (string, bool) {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text), true
	case CellNumber, CellDate:
		return strconv.FormatInt(int64(c.Number), 10), true
	case CellBool:
		return strconv.FormatBool(c.Bool), true
	}
	return "", false
}

type Row []Cell

func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Strings renders every cell with StringValue, blanks as "".
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i], _ = c.StringValue()
	}
	return out
}

// Sheet is the first worksheet of an upload. Rows[0] is the header.
type Sheet struct {
	Name string
	Rows []Row
}
