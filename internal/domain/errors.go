package domain

import "errors"

// Entry validation errors
var (
	ErrInvalidSentimentLabel = errors.New("sentiment label must be positive, neutral or negative")
	ErrEmptyEntryText        = errors.New("entry text must not be empty")
)
