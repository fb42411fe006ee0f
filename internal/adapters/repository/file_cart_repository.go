package repository

import (
	"context"
	"fmt"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/ports"
)

// FileCartRepository implements ports.CartRepository over cart.json
type FileCartRepository struct {
	doc *Document[entities.Carts]
}

// NewFileCartRepository creates a new file-backed cart repository
func NewFileCartRepository(store *FileStore) ports.CartRepository {
	return &FileCartRepository{doc: store.Carts}
}

func (r *FileCartRepository) Get(ctx context.Context, username string) (entities.Cart, error) {
	carts, err := r.doc.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return carts[username].Clone(), nil
}

func (r *FileCartRepository) SetItem(ctx context.Context, username, item string, quantity int) (entities.Cart, error) {
	var updated entities.Cart
	err := r.doc.Update(ctx, func(carts *entities.Carts) error {
		cart := cartFor(carts, username)
		cart.SetQuantity(item, quantity)
		updated = cart.Clone()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set cart item: %w", err)
	}
	return updated, nil
}

func (r *FileCartRepository) Replace(ctx context.Context, username string, cart entities.Cart) (entities.Cart, error) {
	replacement := cart.Normalized()
	err := r.doc.Update(ctx, func(carts *entities.Carts) error {
		if *carts == nil {
			*carts = entities.Carts{}
		}
		(*carts)[username] = replacement
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace cart: %w", err)
	}
	return replacement.Clone(), nil
}

func (r *FileCartRepository) Clear(ctx context.Context, username string) (entities.Cart, error) {
	var previous entities.Cart
	err := r.doc.Update(ctx, func(carts *entities.Carts) error {
		previous = cartFor(carts, username).Clone()
		(*carts)[username] = entities.NewCart()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return previous, nil
}

// cartFor returns the stored cart for username, creating an empty one when
// the document has none. A document containing null decodes to a nil map.
func cartFor(carts *entities.Carts, username string) entities.Cart {
	if *carts == nil {
		*carts = entities.Carts{}
	}
	cart := (*carts)[username]
	if cart == nil {
		cart = entities.NewCart()
		(*carts)[username] = cart
	}
	return cart
}
