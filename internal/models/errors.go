package models

import "errors"

var (
	// ErrUnavailable marks market data that could not be fetched this cycle.
	// Callers skip evaluation and retry on the next cycle.
	ErrUnavailable = errors.New("market data unavailable")

	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidPlan      = errors.New("invalid plan")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthorized    = errors.New("not authorized")
)
