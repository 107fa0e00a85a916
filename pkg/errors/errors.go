package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile         = errors.New("please select a file")
	ErrUnsupportedFormat = errors.New("unsupported file format, please upload .xlsx, .xls, or .csv")
	ErrMissingHeader     = errors.New("spreadsheet must have a header row")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrNotFound          = errors.New("record not found")
	ErrFieldExists       = errors.New("field name already exists")
	ErrStudentExists     = errors.New("student id already exists")
	ErrSessionExpired    = errors.New("upload session expired")
	ErrAlreadyMarked     = errors.New("attendance already marked for this date")
	ErrProviderError     = errors.New("notification provider error")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}
