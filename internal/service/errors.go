package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrAuth       = errors.New("authentication failed")
	ErrStorage    = errors.New("image storage is not configured")
)

// StatusError carries a client-facing message for one of the sentinel errors
type StatusError struct {
	Kind    error
	Message string
}

func (e *StatusError) Error() string { return e.Message }
func (e *StatusError) Unwrap() error { return e.Kind }

func notFound(msg string) error   { return &StatusError{Kind: ErrNotFound, Message: msg} }
func forbidden(msg string) error  { return &StatusError{Kind: ErrPermission, Message: msg} }
func authFailed(msg string) error { return &StatusError{Kind: ErrAuth, Message: msg} }

// ValidationError collects input errors keyed by field. Message is set for
// errors that belong to the request as a whole.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return strings.Join(parts, "; ")
}

// Add records msg against field
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e when anything was recorded
func (e *ValidationError) OrNil() error {
	if e.Message == "" && len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) *ValidationError {
	v := &ValidationError{Message: msg}
	v.Add(field, msg)
	return v
}

func requestError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
