// Package apperrors defines the error taxonomy shared by the catalog service,
// the HTTP layer and the CLI. Every error returned across a package boundary
// is either an *AppError or wraps one, so callers can branch on its Kind with
// errors.Is and never need to inspect driver errors.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR"
	KindNotFound    Kind = "NOT_FOUND"
	KindPersistence Kind = "PERSISTENCE_ERROR"
)

// AppError is a structured catalog error with a kind, a stable code, a
// human-readable message and an optional internal cause.
type AppError struct {
	Kind     Kind   `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches a target with the same code, or a kind sentinel (ErrValidation,
// ErrNotFound, ErrPersistence) of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code || t.Code == string(e.Kind)
}

// StatusCode maps the error kind onto an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Wrap creates a new AppError with the same kind/code/message as sentinel
// but carrying an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Kind:     sentinel.Kind,
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// Persistence passes AppErrors through untouched and wraps anything else as
// a PERSISTENCE_ERROR. A nil err stays nil.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(ErrPersistence, err)
}

// Kind sentinels.
var (
	ErrValidation  = &AppError{Kind: KindValidation, Code: string(KindValidation), Message: "Invalid input"}
	ErrNotFound    = &AppError{Kind: KindNotFound, Code: string(KindNotFound), Message: "Resource not found"}
	ErrPersistence = &AppError{Kind: KindPersistence, Code: string(KindPersistence), Message: "Catalog storage failed"}
)

// Category errors.
var (
	ErrCategoryNotFound     = &AppError{Kind: KindNotFound, Code: "CATEGORY_NOT_FOUND", Message: "Category not found"}
	ErrCategoryNameRequired = &AppError{Kind: KindValidation, Code: "CATEGORY_NAME_REQUIRED", Message: "Category name is required"}
)

// Item errors.
var (
	ErrItemNotFound    = &AppError{Kind: KindNotFound, Code: "ITEM_NOT_FOUND", Message: "Item not found"}
	ErrPictureRequired = &AppError{Kind: KindValidation, Code: "PICTURE_REQUIRED", Message: "Picture data is required"}
	ErrUnknownCategory = &AppError{Kind: KindValidation, Code: "UNKNOWN_CATEGORY", Message: "Category does not exist"}
)
