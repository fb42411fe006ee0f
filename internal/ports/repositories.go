package ports

import (
	"context"
	"time"

	"github.com/foodcart/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}

// CartRepository defines the interface for cart data operations.
// A username without a stored cart reads as an empty cart.
type CartRepository interface {
	Get(ctx context.Context, username string) (entities.Cart, error)
	SetItem(ctx context.Context, username, item string, quantity int) (entities.Cart, error)
	Replace(ctx context.Context, username string, cart entities.Cart) (entities.Cart, error)
	Clear(ctx context.Context, username string) (entities.Cart, error)
}

// StoreObserver receives the outcome of every persisted-store operation.
type StoreObserver interface {
	ObserveStoreOperation(document, operation string, duration time.Duration, err error)
}

// NopStoreObserver discards observations.
type NopStoreObserver struct{}

// ObserveStoreOperation implements StoreObserver.
func (NopStoreObserver) ObserveStoreOperation(string, string, time.Duration, error) {}
