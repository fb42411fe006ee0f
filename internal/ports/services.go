package ports

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/foodcart/core/internal/domain/entities"
)

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// Claims represents the JWT claims; the subject is the username.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Cart related types
type UpdateCartItemRequest struct {
	Username string `param:"username" json:"-" validate:"required"`
	Item     string `json:"item" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}

type ReplaceCartRequest struct {
	Username string        `json:"username" validate:"required"`
	Cart     entities.Cart `json:"cart"`
}

type PurchaseRequest struct {
	Username string `json:"username" validate:"required"`
}

type PurchaseReceipt struct {
	Items   entities.Cart `json:"items"`
	Total   float64       `json:"total"`
	Unknown []string      `json:"unknown,omitempty"`
}
