package processing

import (
	"errors"
	"fmt"

	"github.com/RMahshie/rfsweep/internal/parser"
	"github.com/RMahshie/rfsweep/internal/segment"
	"github.com/RMahshie/rfsweep/pkg/models"
)

// ErrStorageDisabled is returned for s3:// inputs when no bucket is configured
var ErrStorageDisabled = errors.New("object storage not configured")

// FileError ties a failure to the input it came from
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, ErrorKind(e.Err), e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ErrorKind names the failure class of err for reporting
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, parser.ErrUnrecognizedFormat):
		return "UnrecognizedFormat"
	case errors.Is(err, parser.ErrMalformedRow):
		return "MalformedRow"
	case errors.Is(err, segment.ErrInsufficientData):
		return "InsufficientData"
	default:
		return "IO"
	}
}

// BatchResult collects the outcome of a multi-file run
type BatchResult struct {
	Results []*models.FileResult
	Errors  []*FileError
}

// Failed reports whether any file in the batch failed
func (b *BatchResult) Failed() bool {
	return len(b.Errors) > 0
}
