package http

import (
	"context"

	"mcmerge/internal/services"
)

// MergeServiceInterface defines the merge operations the handler depends on.
// Satisfied by *services.MergeService; mocked in tests.
type MergeServiceInterface interface {
	Merge(ctx context.Context, files []services.UploadedFile, format services.OutputFormat) (*services.MergeResult, error)
}
