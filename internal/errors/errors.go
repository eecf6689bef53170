package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrEmptyUpload      = New(http.StatusBadRequest, "EMPTY_UPLOAD", "No allocation files were uploaded")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Uploaded file exceeds the size limit")

	// 422 Unprocessable Entity
	ErrMalformedFile  = New(http.StatusUnprocessableEntity, "FILE_MALFORMED", "Uploaded file could not be read as a workbook")
	ErrSchemaConflict = New(http.StatusUnprocessableEntity, "SCHEMA_CONFLICT", "Uploaded file does not match the allocation export schema")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrSerialization  = New(http.StatusInternalServerError, "SERIALIZATION_FAILED", "Consolidated workbook could not be written")
)

// Helper functions for specific error types

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// MalformedFileError creates a malformed file error naming the offending file
func MalformedFileError(filename string, err error) *APIError {
	return NewWithDetails(
		http.StatusUnprocessableEntity,
		"FILE_MALFORMED",
		fmt.Sprintf("File %q could not be read as a workbook", filename),
		err.Error(),
	)
}

// SchemaConflictError creates a schema conflict error naming the offending file
func SchemaConflictError(filename, detail string) *APIError {
	return NewWithDetails(
		http.StatusUnprocessableEntity,
		"SCHEMA_CONFLICT",
		fmt.Sprintf("File %q does not match the allocation export schema", filename),
		detail,
	)
}

// SerializationError creates a workbook serialization error
func SerializationError(err error) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		"SERIALIZATION_FAILED",
		"Consolidated workbook could not be written",
		err.Error(),
	)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
