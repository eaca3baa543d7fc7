package model

import "context"

// Transactor runs fn inside a single database transaction. The context given
// to fn carries the transaction; stores created from the same connection
// participate in it automatically. Any error rolls the whole sequence back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
