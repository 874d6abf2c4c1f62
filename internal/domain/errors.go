package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid job transition")
	ErrJobAlreadyRunning   = errors.New("job already running")
	ErrJobNotCancellable   = errors.New("job not cancellable")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrProviderFailure     = errors.New("provider failure")
)

// Validation codes reported to clients.
const (
	CodeEmptyPrompt        = "empty_prompt"
	CodeUnknownModel       = "unknown_model"
	CodeUnknownQuality     = "unknown_quality"
	CodeInvalidSize        = "invalid_size"
	CodeInsufficientImages = "insufficient_images"
	CodeTooManyImages      = "too_many_images"
	CodeUnknownTier        = "unknown_tier"
	CodeEmptyImageURI      = "empty_image_uri"
	CodeUnknownTool        = "unknown_tool"
	CodeUnknownOutfit      = "unknown_outfit"
	CodeInvalidFeature     = "invalid_feature"
	CodeMissingSource      = "missing_source"
	CodeUnknownFacet       = "unknown_facet"
	CodeInvalidCallback    = "invalid_callback"
	CodeUnsupportedFile    = "unsupported_file"
)

// ValidationError describes a rejected precondition. It wraps ErrValidation.
type ValidationError struct {
	Code   string
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return e.Code
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(code, field, detail string) error {
	return &ValidationError{Code: code, Field: field, Detail: detail}
}
