package model

import (
	"fmt"
	"time"
)

type RowStatus string

const (
	RowStatusNew       RowStatus = "NEW"
	RowStatusChanged   RowStatus = "CHANGED"
	RowStatusUnchanged RowStatus = "UNCHANGED"
)

// ImportRow is one decoded spreadsheet row on its way through preview and commit.
// It is never persisted.
type ImportRow struct {
	RowNumber int `json:"row_number"`
	StudentFields
	Extensions Extensions        `json:"extensions,omitempty"`
	Valid      bool              `json:"valid"`
	Errors     []string          `json:"errors"`
	Status     RowStatus         `json:"status"`
	Changed    map[string]bool   `json:"changed_fields"`
	Previous   map[string]string `json:"previous_values"`
}

func NewImportRow(rowNumber int) *ImportRow {
	return &ImportRow{
		RowNumber:  rowNumber,
		Extensions: Extensions{},
		Valid:      true,
		Errors:     []string{},
		Status:     RowStatusNew,
		Changed:    map[string]bool{},
		Previous:   map[string]string{},
	}
}

func (r *ImportRow) AddError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ImportRow) MarkChanged(field, previous string) {
	r.Changed[field] = true
	r.Previous[field] = previous
}

// Label identifies the row in log lines and failure messages.
func (r *ImportRow) Label() string {
	return fmt.Sprintf("Row %d (%s)", r.RowNumber, r.StudentID.String)
}

type Preview struct {
	UploadID        string            `json:"upload_id,omitempty"`
	Filename        string            `json:"filename"`
	Rows            []*ImportRow      `json:"rows"`
	TotalRows       int               `json:"total_rows"`
	ValidCount      int               `json:"valid_count"`
	ActiveFields    []FieldDefinition `json:"active_fields"`
	UnmappedHeaders []string          `json:"unmapped_headers,omitempty"`
}

type CommitResult struct {
	Succeeded            int      `json:"succeeded"`
	Failed               int      `json:"failed"`
	Skipped              int      `json:"skipped"`
	NotificationsSent    int      `json:"notifications_sent"`
	NotificationsFailed  int      `json:"notifications_failed"`
	NotificationsSkipped int      `json:"notifications_skipped"`
	Failures             []string `json:"failures"`
}

func (r *CommitResult) Summary() string {
	msg := fmt.Sprintf("%d students saved", r.Succeeded)
	if r.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", r.Failed)
	}
	if r.Skipped > 0 {
		msg += fmt.Sprintf(", %d invalid rows skipped", r.Skipped)
	}
	return msg + fmt.Sprintf(". %d WhatsApp messages sent.", r.NotificationsSent)
}

// UploadSession remembers an archived upload so it can be previewed again.
type UploadSession struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"storage_key"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}
