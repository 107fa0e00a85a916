package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Storage archives uploaded roster files.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
	Delete(ctx context.Context, key string) error
}

// UploadKey lays archived uploads out by day: uploads/YYYY/MM/DD/<id><ext>.
func UploadKey(id, filename string, at time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("uploads/%s/%s%s", at.UTC().Format("2006/01/02"), id, ext)
}

// ContentType maps a roster file extension to its MIME type.
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	}
	return "application/octet-stream"
}
