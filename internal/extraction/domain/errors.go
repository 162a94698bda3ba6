package domain

import "errors"

var (
	ErrMissingURL      = errors.New("source url is required")
	ErrFetchFailed     = errors.New("failed to fetch page content")
	ErrAIUnavailable   = errors.New("ai analyzer not configured")
	ErrUnparseableJSON = errors.New("model answer is not valid JSON")
)
