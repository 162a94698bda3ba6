package domain

import "errors"

var (
	ErrMissingImage          = errors.New("front and back images are required")
	ErrInvalidImage          = errors.New("image is not valid base64 encoded JPEG, PNG or WebP")
	ErrRecognizerUnavailable = errors.New("vision model not configured")
)
