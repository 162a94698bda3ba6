package domain

import "errors"

var (
	ErrInvalidOrder   = errors.New("invalid order: amount must be positive, currency a 3 letter code and mode crypto or fiat")
	ErrInvalidStatus  = errors.New("status must be completed, failed or cancelled")
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderFinalized = errors.New("order already finalized")
	ErrGateway        = errors.New("payment gateway unavailable")
)
