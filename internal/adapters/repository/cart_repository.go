package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/database"
	"github.com/foodcart/core/internal/ports"
)

// CartRepositoryImpl implements the CartRepository interface on PostgreSQL.
// An empty cart is the absence of rows.
type CartRepositoryImpl struct {
	db *database.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *database.DB) ports.CartRepository {
	return &CartRepositoryImpl{db: db}
}

type cartItemRow struct {
	Item     string `db:"item"`
	Quantity int    `db:"quantity"`
}

func (r *CartRepositoryImpl) Get(ctx context.Context, username string) (entities.Cart, error) {
	cart, err := selectCart(ctx, r.db.DB, username)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (r *CartRepositoryImpl) SetItem(ctx context.Context, username, item string, quantity int) (entities.Cart, error) {
	var cart entities.Cart
	err := r.db.WithTransaction(ctx, "set cart item", func(tx *sqlx.Tx) error {
		if quantity <= 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM cart_items WHERE username = $1 AND item = $2`,
				username, item); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cart_items (username, item, quantity)
				VALUES ($1, $2, $3)
				ON CONFLICT (username, item) DO UPDATE SET quantity = EXCLUDED.quantity`,
				username, item, quantity); err != nil {
				return err
			}
		}

		var err error
		cart, err = selectCart(ctx, tx, username)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *CartRepositoryImpl) Replace(ctx context.Context, username string, cart entities.Cart) (entities.Cart, error) {
	replacement := cart.Normalized()
	err := r.db.WithTransaction(ctx, "replace cart", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE username = $1`, username); err != nil {
			return err
		}
		for _, item := range replacement.Items() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cart_items (username, item, quantity) VALUES ($1, $2, $3)`,
				username, item, replacement[item]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replacement, nil
}

func (r *CartRepositoryImpl) Clear(ctx context.Context, username string) (entities.Cart, error) {
	var previous entities.Cart
	err := r.db.WithTransaction(ctx, "clear cart", func(tx *sqlx.Tx) error {
		var rows []cartItemRow
		if err := tx.SelectContext(ctx, &rows, `
			DELETE FROM cart_items WHERE username = $1
			RETURNING item, quantity`, username); err != nil {
			return err
		}
		previous = rowsToCart(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func selectCart(ctx context.Context, q sqlx.QueryerContext, username string) (entities.Cart, error) {
	var rows []cartItemRow
	if err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT item, quantity FROM cart_items WHERE username = $1`, username); err != nil {
		return nil, err
	}
	return rowsToCart(rows), nil
}

func rowsToCart(rows []cartItemRow) entities.Cart {
	cart := entities.NewCart()
	for _, row := range rows {
		cart.SetQuantity(row.Item, row.Quantity)
	}
	return cart
}
