// Package errors classifies failures raised while rendering pages so the app
// can pick the HTTP status and the localized message shown to visitors.
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindUnavailable  Kind = "unavailable"
	KindNotFound     Kind = "not_found"
)

// Status is the HTTP status a page failing with k answers with.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind and the catalog key of the message visitors see.
// Cause stays in logs only.
type Error struct {
	Kind  Kind
	Key   string
	Cause error
}

func (e Error) Error() string {
	switch {
	case e.Cause != nil:
		return e.Cause.Error()
	case e.Key != "":
		return e.Key
	default:
		return string(e.Kind)
	}
}

func (e Error) Unwrap() error {
	return e.Cause
}

// New builds an Error without a cause.
func New(kind Kind, key string) error {
	return Error{Kind: kind, Key: strings.TrimSpace(key)}
}

// Wrap classifies cause. A nil cause stays nil.
func Wrap(kind Kind, key string, cause error) error {
	if cause == nil {
		return nil
	}
	return Error{Kind: kind, Key: strings.TrimSpace(key), Cause: cause}
}

// LocalizationKey returns the catalog key of the first Error in err's chain.
func LocalizationKey(err error) string {
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return ""
	}
	return appErr.Key
}

// HTTPStatus maps err to a status code; unclassified errors are 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr Error
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	return appErr.Kind.Status()
}
