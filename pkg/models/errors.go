package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies terminal extraction failures
type ErrorKind string

const (
	ErrInvalidInput     ErrorKind = "invalid_input"
	ErrRateLimited      ErrorKind = "rate_limited"
	ErrSignInRequired   ErrorKind = "sign_in_required"
	ErrPrivateVideo     ErrorKind = "private_video"
	ErrUnavailable      ErrorKind = "unavailable"
	ErrNoDownloadURL    ErrorKind = "no_download_url"
	ErrExtractionFailed ErrorKind = "extraction_failed"
	ErrOverloaded       ErrorKind = "overloaded"
	ErrInternal         ErrorKind = "internal"
)

// ExtractionError is the classified failure surfaced to callers
type ExtractionError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	RetryAfter float64   `json:"retry_after,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatus maps the error kind to the response status code
func (e *ExtractionError) HTTPStatus() int {
	switch e.Kind {
	case ErrInvalidInput, ErrExtractionFailed:
		return http.StatusBadRequest
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrSignInRequired, ErrPrivateVideo:
		return http.StatusForbidden
	case ErrUnavailable:
		return http.StatusNotFound
	case ErrNoDownloadURL, ErrOverloaded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retriable reports whether rotating to another client profile may help
func (e *ExtractionError) Retriable() bool {
	switch e.Kind {
	case ErrSignInRequired, ErrExtractionFailed:
		return true
	}
	return false
}

// NewInvalidInput creates an input validation error
func NewInvalidInput(format string, args ...interface{}) *ExtractionError {
	return &ExtractionError{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewRateLimited creates a denial carrying the remaining wait
func NewRateLimited(retryAfter float64) *ExtractionError {
	return &ExtractionError{
		Kind:       ErrRateLimited,
		Message:    fmt.Sprintf("Rate limit exceeded. Try again in %.1f seconds.", retryAfter),
		RetryAfter: retryAfter,
	}
}

// NewSignInRequired creates the terminal bot-verification error
func NewSignInRequired() *ExtractionError {
	return &ExtractionError{
		Kind:       ErrSignInRequired,
		Message:    "This video requires sign-in verification.",
		Suggestion: "Try the /video/fallback endpoint with method=embed, mobile or basic.",
	}
}

// NewPrivateVideo creates the non-retriable private video error
func NewPrivateVideo() *ExtractionError {
	return &ExtractionError{Kind: ErrPrivateVideo, Message: "This video is private and cannot be accessed."}
}

// NewUnavailable creates the non-retriable deleted/unavailable error
func NewUnavailable() *ExtractionError {
	return &ExtractionError{Kind: ErrUnavailable, Message: "This video is unavailable or has been deleted."}
}

// NewNoDownloadURL distinguishes "found metadata, no playable stream"
func NewNoDownloadURL() *ExtractionError {
	return &ExtractionError{
		Kind:       ErrNoDownloadURL,
		Message:    "Unable to generate download link. The video may be protected or unavailable.",
		Suggestion: "Try a different quality or format.",
	}
}

// NewExtractionFailed wraps an unclassified engine failure
func NewExtractionFailed(format string, args ...interface{}) *ExtractionError {
	return &ExtractionError{Kind: ErrExtractionFailed, Message: fmt.Sprintf(format, args...)}
}

// NewOverloaded signals the extraction queue is full
func NewOverloaded() *ExtractionError {
	return &ExtractionError{Kind: ErrOverloaded, Message: "Server overloaded, please try again later."}
}

// NewInternal creates an unclassified internal fault. Detail stays in logs,
// not in the client body.
func NewInternal() *ExtractionError {
	return &ExtractionError{Kind: ErrInternal, Message: "Internal server error while processing video."}
}

// AsExtractionError unwraps err into an *ExtractionError if it is one
func AsExtractionError(err error) (*ExtractionError, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
