package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrorRecordNotFound   = errors.New("record not found")
	ErrUserInactive       = errors.New("user not found or inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVersionConflict    = errors.New("report was modified by another request")
)

type ErrorKind int

const (
	KindUpstream ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidTransition
	KindRateLimited
)

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError carries the client-facing message and the status family of a failure.
type AppError struct {
	Kind    ErrorKind
	Message string
	Errors  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string, fields ...FieldError) *AppError {
	if message == "" {
		message = "Validation failed"
	}
	return &AppError{Kind: KindValidation, Message: message, Errors: fields}
}

func NewUnauthenticated(message string, err error) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message, Err: err}
}

func NewForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Err: ErrorRecordNotFound}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewInvalidTransition(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: message}
}

func NewRateLimited(message string) *AppError {
	return &AppError{Kind: KindRateLimited, Message: message}
}

func NewUpstream(message string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// AsAppError unwraps err into an AppError, treating anything unknown as upstream.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, ErrorRecordNotFound) {
		return NewNotFound("Resource not found")
	}
	if IsDuplicateKey(err) {
		return NewConflict("Duplicate entry", err)
	}
	return NewUpstream("Internal server error", err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// IsDuplicateKey recognises unique-index violations from MySQL (1062) and SQLite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
