package partner

import "errors"

// Sentinel errors for the partner service layer.
var (
	ErrNotFound         = errors.New("invalid disposal code")
	ErrAlreadyCompleted = errors.New("this disposal has already been completed")
	ErrCodeRequired     = errors.New("disposal code is required")
)
