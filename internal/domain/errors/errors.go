package errors

import (
	"net/http"

	"marketplace/internal/errors"
)

// Kind is the caller-facing classification of a failure.
type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindConflict          Kind = "CONFLICT"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidState      Kind = "INVALID_STATE"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindInternal          Kind = "INTERNAL"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Kind() Kind        // Failure classification
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind      Kind
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, errorCode, message, details string) *BaseError {
	return &BaseError{
		kind:      kind,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code derived from the error kind
func (e *BaseError) HTTPCode() int {
	return httpCodeOf(e.kind)
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Kind returns the failure classification
func (e *BaseError) Kind() Kind {
	return e.kind
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

func httpCodeOf(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict, KindInsufficientStock, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error types
var (
	// Generic kinds
	ErrInvalidInput      = NewBaseError(KindInvalidInput, "INVALID_INPUT", "invalid input", "")
	ErrConflict          = NewBaseError(KindConflict, "CONFLICT", "resource conflict", "")
	ErrNotFound          = NewBaseError(KindNotFound, "NOT_FOUND", "resource not found", "")
	ErrInsufficientStock = NewBaseError(KindInsufficientStock, "INSUFFICIENT_STOCK", "insufficient stock", "")
	ErrForbidden         = NewBaseError(KindForbidden, "FORBIDDEN", "access denied", "")
	ErrInvalidState      = NewBaseError(KindInvalidState, "INVALID_STATE", "operation not allowed in the current state", "")
	ErrInternal          = NewBaseError(KindInternal, "INTERNAL", "internal error, please retry later", "")
	ErrUnauthenticated   = NewBaseError(KindUnauthenticated, "UNAUTHENTICATED", "missing or invalid access token", "")
	ErrConcurrentUpdate  = NewBaseError(KindConflict, "CONCURRENT_UPDATE", "the resource changed concurrently, please retry", "")

	// Account-related errors
	ErrAccountAlreadyExists = NewBaseError(KindConflict, "ACCOUNT_ALREADY_EXISTS", "email or phone already registered", "")
	ErrAccountNotFound      = NewBaseError(KindNotFound, "ACCOUNT_NOT_FOUND", "account not found", "")
	ErrAccountSuspended     = NewBaseError(KindForbidden, "ACCOUNT_SUSPENDED", "account is suspended", "")
	ErrInvalidCredentials   = NewBaseError(KindUnauthenticated, "INVALID_CREDENTIALS", "invalid email or password", "")

	// Role profile errors
	ErrRoleProfileNotFound = NewBaseError(KindNotFound, "ROLE_PROFILE_NOT_FOUND", "role profile not found", "")
	ErrPartnerNotFound     = NewBaseError(KindNotFound, "PARTNER_NOT_FOUND", "no approved partner with that name", "")

	// Catalog and cart errors
	ErrCatalogItemNotFound = NewBaseError(KindNotFound, "CATALOG_ITEM_NOT_FOUND", "catalog item not found", "")
	ErrCartLineNotFound    = NewBaseError(KindNotFound, "CART_LINE_NOT_FOUND", "item is not in the cart", "")
	ErrEmptyCart           = NewBaseError(KindInvalidState, "EMPTY_CART", "cart is empty", "")

	// Order errors
	ErrOrderNotFound = NewBaseError(KindNotFound, "ORDER_NOT_FOUND", "order not found", "")
	ErrAgentNotFound = NewBaseError(KindNotFound, "DELIVERY_AGENT_NOT_FOUND", "delivery agent not found", "")
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error to errors.Is / errors.As.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Kind returns the failure classification
func (e *DatabaseExecuteError) Kind() Kind {
	return KindInternal
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// KindOf classifies err. Errors that carry no AppError are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindInternal
}

// IsCallerRecoverable reports whether err should be returned to the caller as-is
// rather than replaced by a generic internal failure.
func IsCallerRecoverable(err error) bool {
	kind := KindOf(err)

	return kind != "" && kind != KindInternal
}
