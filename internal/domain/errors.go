package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals input rejected before transmission.
	ErrValidation = errors.New("validation failed")
	// ErrDecode signals stored geometry that could not be decoded.
	ErrDecode = errors.New("decode failed")
	// ErrProtocol signals an ok:false response from the geodb.
	ErrProtocol = errors.New("protocol error")
	// ErrTransport signals a network-level failure.
	ErrTransport = errors.New("transport error")
	// ErrUnauthorized signals missing or rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired signals an expired admin session token.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotFound signals a missing collection, object or hook.
	ErrNotFound = errors.New("not found")
)

// ValidationError wraps ErrValidation with the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error for an input field.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseError wraps ErrDecode with the id of the object whose geometry
// failed to decode. Overlay rendering skips the object and keeps going.
type ParseError struct {
	ID  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: object %q: %v", ErrDecode.Error(), e.ID, e.Err)
}

func (e *ParseError) Unwrap() error { return ErrDecode }

// NewParse creates a decode error for a stored object.
func NewParse(id string, err error) error {
	return &ParseError{ID: id, Err: err}
}

// ProtocolError carries the verbatim error message reported by the geodb.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", ErrProtocol.Error(), e.Message)
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }
