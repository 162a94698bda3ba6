package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is a buyer, seller or dealer account. Authentication lives elsewhere.
type User struct {
	ID          uuid.UUID
	DisplayName string
	IsDealer    bool
	CreatedAt   time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
