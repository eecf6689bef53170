package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"mcmerge/internal/config"
	"mcmerge/internal/dataprocessing"
	apierrors "mcmerge/internal/errors"
	"mcmerge/internal/infrastructure"
	"mcmerge/internal/services"
	"mcmerge/internal/validation"
	apiv1 "mcmerge/pkg/contracts/api/v1"
)

// uploadFieldName is the multipart form field carrying the allocation files.
const uploadFieldName = "files"

// MergeHandler handles allocation merge HTTP requests with RFC 7807 compliance
type MergeHandler struct {
	service      MergeServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *validation.UploadValidator
	upload       config.UploadConfig
}

// NewMergeHandler creates a new merge handler with RFC 7807 error handling
func NewMergeHandler(service MergeServiceInterface, upload config.UploadConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MergeHandler {
	return &MergeHandler{
		service:      service,
		logger:       infrastructure.WithComponent(logger, "merge_handler"),
		errorHandler: errorHandler,
		validator:    validation.NewUploadValidator(upload.MaxFileBytes, logger),
		upload:       upload,
	}
}

// Routes returns the merge routes
func (h *MergeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Merge)
	r.Post("/summary", h.Summary)
	return r
}

// Merge handles POST /api/merge: accepts a multipart upload of allocation
// exports and responds with the consolidated workbook as an attachment.
func (h *MergeHandler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, ok := h.runMerge(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(result.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		h.logger.ErrorContext(ctx, "failed to write merge response",
			slog.String("error", err.Error()))
	}
}

// Summary handles POST /api/merge/summary: runs the same consolidation but
// returns the merge summary as JSON instead of the workbook, so the upload
// page can preview the result before downloading.
func (h *MergeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runMerge(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, apiv1.MergeSummaryResponse{
		Filename: result.Filename,
		Summary:  result.Summary,
	})
}

// runMerge extracts the uploaded files, invokes the merge service and writes
// the error response itself on failure. The second return is false once a
// response has been written.
func (h *MergeHandler) runMerge(w http.ResponseWriter, r *http.Request) (*services.MergeResult, bool) {
	ctx := r.Context()

	// Cap the whole request body; one oversized upload cannot exhaust memory.
	maxBody := h.upload.MaxFileBytes * int64(h.upload.MaxFiles)
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(h.upload.MaxMemoryBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.WarnContext(ctx, "failed to clean up multipart form",
				slog.String("error", err.Error()))
		}
	}()

	headers := r.MultipartForm.File[uploadFieldName]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrEmptyUpload)
		return nil, false
	}
	if len(headers) > h.upload.MaxFiles {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadFieldName,
			fmt.Sprintf("Too many files: %d uploaded, limit is %d", len(headers), h.upload.MaxFiles)))
		return nil, false
	}

	files := make([]services.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if err := h.validator.ValidateHeader(fh); err != nil {
			h.errorHandler.HandleError(w, r, h.mapValidationError(fh.Filename, err))
			return nil, false
		}
		f, err := fh.Open()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return nil, false
		}
		defer f.Close()
		if err := h.validator.ValidateContent(fh.Filename, f); err != nil {
			h.errorHandler.HandleError(w, r, h.mapValidationError(fh.Filename, err))
			return nil, false
		}
		files = append(files, services.UploadedFile{Name: fh.Filename, Data: f})
	}

	result, err := h.service.Merge(ctx, files, services.OutputFormat(r.FormValue("format")))
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return nil, false
	}
	return result, true
}

// mapValidationError translates upload validation failures into API errors.
func (h *MergeHandler) mapValidationError(filename string, err error) error {
	switch {
	case errors.Is(err, validation.ErrTooLarge):
		return apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			"PAYLOAD_TOO_LARGE",
			fmt.Sprintf("File %q exceeds the size limit", filename),
			err.Error(),
		)
	default:
		return apierrors.MalformedFileError(filename, err)
	}
}

// mapServiceError translates service and parsing errors into API errors.
func (h *MergeHandler) mapServiceError(err error) error {
	var fileErr *services.FileError
	if errors.As(err, &fileErr) {
		if errors.Is(fileErr.Err, dataprocessing.ErrMissingStoreColumn) {
			return apierrors.SchemaConflictError(fileErr.Filename, fileErr.Err.Error())
		}
		return apierrors.MalformedFileError(fileErr.Filename, fileErr.Err)
	}

	switch {
	case errors.Is(err, services.ErrNoFilesUploaded):
		return apierrors.ErrEmptyUpload
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", "Output format must be xlsx or csv")
	case errors.Is(err, services.ErrWorkbookWrite):
		return apierrors.SerializationError(err)
	default:
		return err
	}
}
