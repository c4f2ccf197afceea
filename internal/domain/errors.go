package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithCause returns a copy of the error carrying an underlying cause,
// leaving the sentinel itself untouched.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidDocumentType = NewDomainError(ErrCodeValidation, "invalid document type")
	ErrMissingFile         = NewDomainError(ErrCodeValidation, "no file provided")
	ErrNotAPDF             = NewDomainError(ErrCodeValidation, "only PDF files are allowed")
	ErrFileTooLarge        = NewDomainError(ErrCodeValidation, "file exceeds maximum upload size")
	ErrEmailTaken          = NewDomainError(ErrCodeValidation, "email is already registered")
)

// Not found errors
var (
	ErrUserNotFound         = NewDomainError(ErrCodeNotFound, "user not found")
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
	ErrConversationNotFound = NewDomainError(ErrCodeNotFound, "conversation not found")
)

// Authorization errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeUnauthorized, "invalid credentials")
	ErrUserInactive       = NewDomainError(ErrCodeUnauthorized, "user account is deactivated")
	ErrAdminRequired      = NewDomainError(ErrCodeForbidden, "admin role required")
)

// Internal errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrIngestionFailed      = NewDomainError(ErrCodeInternalError, "document ingestion failed")
	ErrQueryFailed          = NewDomainError(ErrCodeInternalError, "failed to process query")
)
