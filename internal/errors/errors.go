// Package errors provides custom error types for the kopeika API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category errors.
var (
	ErrCategoryNotFound   = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrSelfParentCategory = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrDuplicateCategory  = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name or slug already exists", StatusCode: http.StatusConflict}
)

// Month errors.
var (
	ErrMonthNotFound = &AppError{Code: "MONTH_NOT_FOUND", Message: "Month not found", StatusCode: http.StatusNotFound}
	ErrMonthInUse    = &AppError{Code: "MONTH_IN_USE", Message: "Month has transactions and cannot be deleted", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidDirection    = &AppError{Code: "INVALID_DIRECTION", Message: "Unsupported transaction direction", StatusCode: http.StatusBadRequest}
	ErrInvalidDateFormat   = &AppError{Code: "INVALID_DATE_FORMAT", Message: "Date is not in a supported format", StatusCode: http.StatusBadRequest}
)

// Title mapping errors.
var (
	ErrTitleMappingNotFound  = &AppError{Code: "TITLE_MAPPING_NOT_FOUND", Message: "Title mapping not found", StatusCode: http.StatusNotFound}
	ErrDuplicateTitleMapping = &AppError{Code: "DUPLICATE_TITLE_MAPPING", Message: "A mapping for this source title already exists", StatusCode: http.StatusConflict}
)

// Import errors.
var (
	ErrImportNotFound = &AppError{Code: "IMPORT_NOT_FOUND", Message: "CSV import not found", StatusCode: http.StatusNotFound}
	ErrMalformedCSV   = &AppError{Code: "MALFORMED_CSV", Message: "File could not be read as CSV", StatusCode: http.StatusBadRequest}
)
