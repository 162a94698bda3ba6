package application

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor runs fn inside one database transaction; db.Transactor is the
// production implementation.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}
