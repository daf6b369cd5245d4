package analytics

import "errors"

// Sentinel errors for the analytics service layer.
var (
	ErrInvalidRange        = errors.New("invalid date range")
	ErrNarratorUnavailable = errors.New("narrative summaries are not configured")
	ErrNarrativeFormat     = errors.New("invalid narrative response format")
)
