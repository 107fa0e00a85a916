package roster

import (
	"context"
	"strings"
	"testing"

	"gradepulse/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDelimited(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims", " a , b ,c ", []string{"a", "b", "c"}},
		{"quoted delimiter", `"Doe, Jane",S1`, []string{"Doe, Jane", "S1"}},
		{"empty fields", "a,,", []string{"a", "", ""}},
		{"single", "only", []string{"only"}},
		{"empty line", "", []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitDelimited(tc.line, ','))
		})
	}
}

func TestSplitDelimitedDropsQuotes(t *testing.T) {
	assert.Equal(t, []string{"say hi", "x"}, SplitDelimited(`say" "hi,x`, ','))
	assert.Equal(t, []string{"a\tb", "c"}, SplitDelimited("\"a\tb\"\tc", '\t'))
}

func TestDelimitedReaderStripsBOM(t *testing.T) {
	data := []byte("\xef\xbb\xbfStudent ID,Full Name\r\nS1,Asha\r\n")

	sheet, err := DelimitedReader{Delimiter: ','}.Read(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, []string{"Student ID", "Full Name"}, sheet.Rows[0].Strings())
	assert.Equal(t, []string{"S1", "Asha"}, sheet.Rows[1].Strings())
}

func TestDelimitedReaderDecodesUTF16(t *testing.T) {
	// "ID\nS1\n" in UTF-16LE with a BOM.
	data := []byte{0xff, 0xfe, 'I', 0, 'D', 0, '\n', 0, 'S', 0, '1', 0, '\n', 0}

	sheet, err := DelimitedReader{Delimiter: ','}.Read(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "S1", sheet.Rows[1][0].Text)
}

func TestDelimitedReaderRejectsOverlongLine(t *testing.T) {
	data := []byte("Student ID,Full Name\nS1," + strings.Repeat("a", maxLineBytes+10) + "\n")

	_, err := DelimitedReader{Delimiter: ','}.Read(context.Background(), data)
	assert.ErrorIs(t, err, errors.ErrInvalidFileFormat)
}
