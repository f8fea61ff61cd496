package errors

import (
	"context"
	"errors"
	"net"
)

// MapTransportError maps outbound transport errors to AppError instances:
//   - context.Canceled → Canceled
//   - context.DeadlineExceeded or a net timeout → Timeout
//   - an existing AppError → unchanged
//   - anything else → Unavailable
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeCanceled, "request canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Wrap(err, ErrCodeTimeout, "request timed out")
	}

	return Wrap(err, ErrCodeUnavailable, "backend unreachable")
}

// Coder is implemented by errors that know their own category, such as a
// backend status error.
type Coder interface {
	ErrorCode() ErrorCode
}

// CodeOf returns a metric-friendly label for err: its AppError or Coder code
// when present, otherwise the code MapTransportError would assign.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if code := GetCode(err); code != "" {
		return code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return GetCode(MapTransportError(err))
}

// Explainer is implemented by errors that carry an explanation addressed to
// the end user, such as the error field of a rejected login.
type Explainer interface {
	Explanation() string
}

// ExplanationOf returns the first user-facing explanation found in err's chain.
func ExplanationOf(err error) string {
	var e Explainer
	if errors.As(err, &e) {
		return e.Explanation()
	}
	return ""
}
