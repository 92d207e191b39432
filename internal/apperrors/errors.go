// internal/apperrors/errors.go
package apperrors

import "fmt"

// ErrMissingData means a required part of the campaign request was absent.
type ErrMissingData struct {
	Field string
}

func (e *ErrMissingData) Error() string {
	return fmt.Sprintf("missing required data: %s", e.Field)
}

// Helper constructor
func NewMissingData(field string) error {
	return &ErrMissingData{Field: field}
}

// ErrUnsupportedFormat means the recipient source name did not resolve to
// a known format.
type ErrUnsupportedFormat struct {
	FileName string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.FileName)
}

func NewUnsupportedFormat(fileName string) error {
	return &ErrUnsupportedFormat{FileName: fileName}
}

// ErrSMTPUnreachable means the relay handshake failed before any batch was
// enqueued.
type ErrSMTPUnreachable struct {
	Err error
}

func (e *ErrSMTPUnreachable) Error() string {
	return fmt.Sprintf("smtp verification failed: %v", e.Err)
}

func (e *ErrSMTPUnreachable) Unwrap() error {
	return e.Err
}

func NewSMTPUnreachable(err error) error {
	return &ErrSMTPUnreachable{Err: err}
}

// ErrInvalidBatchSize rejects partitioning with a batch size below 1.
type ErrInvalidBatchSize struct {
	Size int
}

func (e *ErrInvalidBatchSize) Error() string {
	return fmt.Sprintf("invalid batch size: %d", e.Size)
}

func NewInvalidBatchSize(size int) error {
	return &ErrInvalidBatchSize{Size: size}
}
