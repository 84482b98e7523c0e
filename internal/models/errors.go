package models

import (
	"errors"
	"fmt"
)

// ErrorType identifies the kind of transform registry failure.
type ErrorType string

const (
	ErrorConfiguration ErrorType = "configuration"  // duplicate or invalid registration
	ErrorMissingType   ErrorType = "missing_type"   // context carries no type tag
	ErrorNoTransformer ErrorType = "no_transformer" // nothing registered for (type, variant)
)

// Sentinel errors for use with errors.Is.
var (
	ErrConfiguration = errors.New("transform configuration error")
	ErrMissingType   = errors.New("context has no type")
	ErrNoTransformer = errors.New("no transformer registered")
)

// Error is returned by Registry operations.
type Error struct {
	Type      ErrorType `json:"type"`
	ModelType string    `json:"model_type"`
	Variant   string    `json:"variant"`
	Message   string    `json:"message"`
}

func newError(kind ErrorType, modelType, variant, format string, args ...any) *Error {
	return &Error{
		Type:      kind,
		ModelType: modelType,
		Variant:   variant,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is lets callers match an *Error against the package sentinels.
func (e *Error) Is(target error) bool {
	switch e.Type {
	case ErrorConfiguration:
		return target == ErrConfiguration
	case ErrorMissingType:
		return target == ErrMissingType
	case ErrorNoTransformer:
		return target == ErrNoTransformer
	}
	return false
}
