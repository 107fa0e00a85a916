package roster

import (
	"strings"

	"gradepulse/internal/model"
)

// Compare marks every field whose incoming value differs from the stored one.
// Values are compared as trimmed strings, so an absent value equals a blank one.
// Validity is not touched.
func Compare(row *model.ImportRow, existing *model.Student) {
	if existing == nil {
		row.Status = model.RowStatusNew
		return
	}

	for _, name := range model.StudentFieldNames {
		if name == model.FieldStudentID {
			continue
		}
		incoming := row.Value(name)
		stored := existing.Value(name)
		if !sameValue(incoming, stored) {
			row.MarkChanged(name, stored)
		}
	}

	for name, v := range row.Extensions {
		var stored string
		if prev, ok := existing.Extensions[name]; ok {
			stored = prev.String()
		}
		if !sameValue(v.String(), stored) {
			row.MarkChanged(name, stored)
		}
	}

	if len(row.Changed) > 0 {
		row.Status = model.RowStatusChanged
	} else {
		row.Status = model.RowStatusUnchanged
	}
}

func sameValue(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
