package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrCorpusMissing = errors.New("corpus directory missing")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrStoreClosed   = errors.New("store closed")
)
