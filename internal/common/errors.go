// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
)

// Common application errors.
var (
	// Data loading errors.
	ErrSourceExhausted = errors.New("all data sources exhausted")
	ErrBadPayload      = errors.New("malformed payload")

	// View errors.
	ErrNoData = errors.New("no data")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)
