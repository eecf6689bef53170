// Package validation checks uploaded allocation files before they reach the
// parser, so obviously bad uploads are rejected with a precise reason.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"mcmerge/internal/infrastructure"
)

// Validation failures wrap one of these sentinels so the transport layer can
// choose the right status code.
var (
	ErrNotWorkbook = errors.New("not an xlsx workbook")
	ErrTooLarge    = errors.New("file exceeds the size limit")
	ErrEmptyFile   = errors.New("file is empty")
)

// xlsxMagic is the ZIP local file header every .xlsx file starts with.
var xlsxMagic = []byte{'P', 'K', 0x03, 0x04}

// UploadValidator provides pre-parse validation for uploaded workbooks
type UploadValidator struct {
	logger       *slog.Logger
	maxFileBytes int64
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(maxFileBytes int64, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &UploadValidator{
		logger:       infrastructure.WithComponent(logger, "upload_validator"),
		maxFileBytes: maxFileBytes,
	}
}

// ValidateHeader checks the multipart header before the file is opened:
// filename, extension and declared size.
func (v *UploadValidator) ValidateHeader(fh *multipart.FileHeader) error {
	name := filepath.Base(fh.Filename)
	if name == "" || name == "." {
		return fmt.Errorf("upload has no filename: %w", ErrNotWorkbook)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" {
		v.logger.Warn("Rejected upload with wrong extension",
			slog.String("file", name),
			slog.String("extension", ext))
		return fmt.Errorf("file %s has extension %q: %w", name, ext, ErrNotWorkbook)
	}

	// Excel lock files start with ~$ and are never real exports.
	if strings.HasPrefix(name, "~$") {
		v.logger.Warn("Rejected temporary Excel file",
			slog.String("file", name))
		return fmt.Errorf("file %s is a temporary Excel file: %w", name, ErrNotWorkbook)
	}

	if fh.Size == 0 {
		return fmt.Errorf("file %s: %w", name, ErrEmptyFile)
	}
	if v.maxFileBytes > 0 && fh.Size > v.maxFileBytes {
		v.logger.Warn("Rejected oversized upload",
			slog.String("file", name),
			slog.Int64("size", fh.Size),
			slog.Int64("limit", v.maxFileBytes))
		return fmt.Errorf("file %s is %d bytes, limit %d: %w",
			name, fh.Size, v.maxFileBytes, ErrTooLarge)
	}

	return nil
}

// ValidateContent checks the file signature. The reader must be seekable;
// the offset is restored before returning.
func (v *UploadValidator) ValidateContent(name string, f io.ReadSeeker) error {
	magic := make([]byte, len(xlsxMagic))
	n, err := io.ReadFull(f, magic)
	if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("rewinding %s: %w", name, seekErr)
	}
	if err != nil || n < len(xlsxMagic) || !bytes.Equal(magic, xlsxMagic) {
		v.logger.Warn("Rejected upload without xlsx signature",
			slog.String("file", name))
		return fmt.Errorf("file %s has no xlsx signature: %w", name, ErrNotWorkbook)
	}

	v.logger.Debug("Upload validated", slog.String("file", name))
	return nil
}
