package api

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// KindOf classifies a client error. The backend reports referential-integrity
// failures as plain 500s, so those count as conflicts.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrTransport) {
		return KindTransport
	}
	var ae *APIError
	if !errors.As(err, &ae) {
		return KindUnknown
	}
	switch {
	case ae.Status == http.StatusNotFound:
		return KindNotFound
	case ae.Status == http.StatusConflict || ae.Status == http.StatusInternalServerError:
		return KindConflict
	case ae.Status >= 400 && ae.Status < 500:
		return KindValidation
	}
	return KindUnknown
}

// StatusOf returns the backend HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// MessageOr returns the backend-supplied message or fallback when there is none.
func MessageOr(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
