package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
)

func TestUploadKey(t *testing.T) {
	at := time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("GST", 4*3600))
	assert.Equal(t, "uploads/2025/03/09/abc.xlsx", UploadKey("abc", "Roster.XLSX", at))
	assert.Equal(t, "uploads/2025/03/09/abc", UploadKey("abc", "roster", at))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("a.CSV"))
	assert.Equal(t, "application/vnd.ms-excel", ContentType("a.xls"))
	assert.Equal(t, "application/octet-stream", ContentType("a.pdf"))
}

func TestIsNotFound(t *testing.T) {
	missing := awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	assert.True(t, isNotFound(missing))
	assert.True(t, isNotFound(fmt.Errorf("download: %w", missing)))
	assert.False(t, isNotFound(awserr.New("AccessDenied", "Access Denied", nil)))
	assert.False(t, isNotFound(fmt.Errorf("boom")))
}
