package domain

import "context"

// TransactionManager runs fn atomically. Repository calls made with the ctx it
// passes in join the same transaction. Financial mutations (settlement clears,
// wallet credits, withdrawal debits) must go through it so they never
// partially apply.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
