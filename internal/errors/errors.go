// Package errors carries the portal's error categories. Every failure that
// crosses a package boundary is either an *AppError or implements Coder so
// handlers and metrics can label it without string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the category label of a failure.
type ErrorCode string

const (
	ErrCodeConflict    ErrorCode = "conflict"    // another login/recovery holds the device
	ErrCodeValidation  ErrorCode = "validation"  // caller input refused before any network call
	ErrCodeUnavailable ErrorCode = "unavailable" // no backend candidate answered
	ErrCodeRejected    ErrorCode = "rejected"    // backend answered, but not with success
	ErrCodeInternal    ErrorCode = "internal"
	ErrCodeTimeout     ErrorCode = "timeout"
	ErrCodeCanceled    ErrorCode = "canceled"
)

// AppError is a categorized error. Field names the offending input for
// validation failures.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

func newError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Conflict reports that a concurrent operation owns the resource.
func Conflict(message string) *AppError { return newError(ErrCodeConflict, message, nil) }

// ValidationField reports invalid input in the named field.
func ValidationField(field, message string) *AppError {
	e := newError(ErrCodeValidation, message, nil)
	e.Field = field
	return e
}

// Unavailable reports that every candidate failed; cause is the last failure.
func Unavailable(message string, cause error) *AppError {
	return newError(ErrCodeUnavailable, message, cause)
}

// Rejected reports a non-success answer from the backend.
func Rejected(message string) *AppError { return newError(ErrCodeRejected, message, nil) }

// Wrap categorizes err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return newError(code, message, err)
}

func asApp(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// GetCode returns the code of the first AppError in err's chain.
func GetCode(err error) ErrorCode {
	if e, ok := asApp(err); ok {
		return e.Code
	}
	return ""
}

// GetField returns the offending field of the first AppError in err's chain.
func GetField(err error) string {
	if e, ok := asApp(err); ok {
		return e.Field
	}
	return ""
}

func IsValidation(err error) bool  { return GetCode(err) == ErrCodeValidation }
func IsConflict(err error) bool    { return GetCode(err) == ErrCodeConflict }
func IsUnavailable(err error) bool { return GetCode(err) == ErrCodeUnavailable }
func IsRejected(err error) bool    { return GetCode(err) == ErrCodeRejected }
