package roster

import (
	"strings"

	"gradepulse/internal/model"

	"github.com/rs/zerolog"
)

// ColumnMap maps canonical field names to column indices.
type ColumnMap map[string]int

func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// NormalizeHeader trims a header, drops a trailing required marker and lowercases it.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimSuffix(h, model.RequiredMarker)
	return strings.ToLower(strings.TrimSpace(h))
}

type HeaderMapper struct {
	byDisplayName map[string]string
	log           zerolog.Logger
}

// NewHeaderMapper builds the lookup from every definition, active or not.
func NewHeaderMapper(defs []model.FieldDefinition, log zerolog.Logger) *HeaderMapper {
	table := make(map[string]string, len(defs))
	for _, d := range defs {
		table[strings.ToLower(strings.TrimSpace(d.DisplayName))] = d.FieldName
	}
	return &HeaderMapper{byDisplayName: table, log: log}
}

// Map resolves header cells to fields. Unknown headers are returned, not rejected.
// When two columns resolve to the same field the later one wins.
func (m *HeaderMapper) Map(headers []string) (ColumnMap, []string) {
	columns := ColumnMap{}
	var unmapped []string
	for i, raw := range headers {
		key := NormalizeHeader(raw)
		if key == "" {
			continue
		}
		field, ok := m.byDisplayName[key]
		if !ok {
			m.log.Warn().Str("header", raw).Int("column", i).Msg("Unmapped header")
			unmapped = append(unmapped, raw)
			continue
		}
		if prev, dup := columns[field]; dup {
			m.log.Warn().Str("field", field).Int("previous_column", prev).Int("column", i).Msg("Duplicate header, using later column")
		}
		columns[field] = i
	}
	return columns, unmapped
}
