package apperr

import (
	"errors"
	"fmt"
)

// Category groups error codes by the layer that raises them
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryProvider   Category = "provider"
	CategoryStorage    Category = "storage"
)

// Error codes
const (
	CodeValidationFailed  = "ValidationFailed"
	CodeInvalidEmail      = "InvalidEmail"
	CodeWeakCredential    = "WeakCredential"
	CodeMissingName       = "MissingName"
	CodeBusy              = "Busy"
	CodeUnknownView       = "UnknownView"
	CodeDuplicateEmail    = "DuplicateEmail"
	CodeInvalidCredential = "InvalidCredential"
	CodeNotFound          = "NotFound"
	CodeUnauthenticated   = "Unauthenticated"

	CodeProviderUnavailable   = "ProviderUnavailable"
	CodeEmptyResponse         = "EmptyResponse"
	CodeSchemaViolation       = "SchemaViolation"
	CodeProviderRequestFailed = "ProviderRequestFailed"

	CodeStorageFailure = "StorageFailure"
)

// Error is the application error carried across package boundaries.
// Message is safe to show to the end user; Err holds the cause.
type Error struct {
	Category Category
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons
var (
	ErrValidation          = &Error{Category: CategoryValidation, Code: CodeValidationFailed}
	ErrInvalidEmail        = &Error{Category: CategoryValidation, Code: CodeInvalidEmail}
	ErrWeakCredential      = &Error{Category: CategoryValidation, Code: CodeWeakCredential}
	ErrMissingName         = &Error{Category: CategoryValidation, Code: CodeMissingName}
	ErrBusy                = &Error{Category: CategoryValidation, Code: CodeBusy}
	ErrUnknownView         = &Error{Category: CategoryValidation, Code: CodeUnknownView}
	ErrDuplicateEmail      = &Error{Category: CategoryAuth, Code: CodeDuplicateEmail}
	ErrInvalidCredential   = &Error{Category: CategoryAuth, Code: CodeInvalidCredential}
	ErrNotFound            = &Error{Category: CategoryAuth, Code: CodeNotFound}
	ErrUnauthenticated     = &Error{Category: CategoryAuth, Code: CodeUnauthenticated}
	ErrProviderUnavailable = &Error{Category: CategoryProvider, Code: CodeProviderUnavailable}
	ErrEmptyResponse       = &Error{Category: CategoryProvider, Code: CodeEmptyResponse}
	ErrSchemaViolation     = &Error{Category: CategoryProvider, Code: CodeSchemaViolation}
	ErrProviderRequest     = &Error{Category: CategoryProvider, Code: CodeProviderRequestFailed}
	ErrStorage             = &Error{Category: CategoryStorage, Code: CodeStorageFailure}
)

// Validation creates a ValidationFailed error with a user-facing message
func Validation(message string) *Error {
	return &Error{Category: CategoryValidation, Code: CodeValidationFailed, Message: message}
}

// New creates an error of the given category and code
func New(category Category, code, message string) *Error {
	return &Error{Category: category, Code: code, Message: message}
}

// Wrap creates an error of the given category and code around a cause
func Wrap(category Category, code, message string, err error) *Error {
	return &Error{Category: category, Code: code, Message: message, Err: err}
}

// Storage wraps a persistence failure
func Storage(message string, err error) *Error {
	return Wrap(CategoryStorage, CodeStorageFailure, message, err)
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CategoryOf reports the category of err, or "" when err is not an *Error
func CategoryOf(err error) Category {
	if appErr, ok := As(err); ok {
		return appErr.Category
	}
	return ""
}

// UserMessage returns the message to show to the user for err.
// Provider errors always prompt a retry.
func UserMessage(err error) string {
	appErr, ok := As(err)
	if !ok {
		return "Something went wrong. Please try again."
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	switch appErr.Code {
	case CodeProviderUnavailable:
		return "The analysis service is not available. Please check the API key configuration and try again."
	case CodeEmptyResponse:
		return "No response from the analysis service. Please try again."
	case CodeSchemaViolation:
		return "The analysis service returned an unexpected response. Please try again."
	case CodeProviderRequestFailed:
		return "Failed to analyze. Please try again."
	case CodeStorageFailure:
		return "Could not save your data. Please try again."
	}
	return "Something went wrong. Please try again."
}
