package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestOfflinePreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("Student ID,Full Name,Father Contact,Shoe Size\nS1,Asha,+971508714823,6\nS2,,,\n"), 0o600))

	out := run(t, "preview", "--offline", "--file", path)

	assert.Contains(t, out, "2 rows, 1 valid")
	assert.Contains(t, out, "Full Name is required")
	assert.Contains(t, out, "Unmapped headers: Shoe Size")
}

func TestOfflineTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")

	out := run(t, "template", "--offline", "--out", path)
	assert.Contains(t, out, "with 41 columns")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Students", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Full Name *", v)
}
