package roster

import (
	"fmt"
	"io"
	"sort"

	"gradepulse/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	TemplateSheet    = "Students"
	TemplateFilename = "student_upload_template.xlsx"

	templateTextRows   = 100
	templateColWidth   = 25
	textNumberFormatID = 49 // "@"
)

// BuildTemplate creates a workbook with one header column per active field in
// sort order and a sample value row below it.
func BuildTemplate(fields []model.FieldDefinition) (*excelize.File, error) {
	active := make([]model.FieldDefinition, 0, len(fields))
	for _, f := range fields {
		if f.Active {
			active = append(active, f)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].SortOrder < active[j].SortOrder })

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		f.Close()
		return nil, err
	}
	if len(active) == 0 {
		return f, nil
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
		NumFmt:    textNumberFormatID,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	sampleStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Italic: true, Color: "808080"},
		NumFmt: textNumberFormatID,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: textNumberFormatID})
	if err != nil {
		f.Close()
		return nil, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(active))
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return f.SetCellStyle(TemplateSheet, "A1", fmt.Sprintf("%s%d", lastCol, templateTextRows), textStyle) },
		func() error { return f.SetColWidth(TemplateSheet, "A", lastCol, templateColWidth) },
		func() error { return f.SetCellStyle(TemplateSheet, "A1", lastCol+"1", headerStyle) },
		func() error { return f.SetCellStyle(TemplateSheet, "A2", lastCol+"2", sampleStyle) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, field := range active {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellStr(TemplateSheet, col+"1", field.HeaderLabel()); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStr(TemplateSheet, col+"2", field.FieldType.SampleValue()); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func WriteTemplate(w io.Writer, fields []model.FieldDefinition) error {
	f, err := BuildTemplate(fields)
	if err != nil {
		return fmt.Errorf("failed to build template: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
