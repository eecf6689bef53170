package services

import (
	"errors"
	"fmt"
)

// Merge service errors
var (
	// ErrNoFilesUploaded means a merge was requested without any files.
	ErrNoFilesUploaded = errors.New("no allocation files uploaded")

	// ErrWorkbookWrite means the consolidated output could not be serialized.
	ErrWorkbookWrite = errors.New("failed to write consolidated workbook")

	// ErrUnsupportedFormat means an unknown output format was requested.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// FileError attributes a parse failure to the uploaded file that caused it,
// so the transport layer can name the file in its error response.
type FileError struct {
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Filename, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
