package http

import (
	"github.com/foodcart/core/internal/domain/entities"
)

// SuccessResponse is the envelope shared by every response. Failures carry
// Success=false and a Message.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type FoodItemsResponse struct {
	Success   bool             `json:"success"`
	FoodItems entities.Catalog `json:"foodItems"`
}

type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type CartResponse struct {
	Success bool          `json:"success"`
	Cart    entities.Cart `json:"cart"`
}

type PurchaseResponse struct {
	Success bool          `json:"success"`
	Items   entities.Cart `json:"items"`
	Total   float64       `json:"total"`
	Unknown []string      `json:"unknown,omitempty"`
}

type UsersResponse struct {
	Success bool     `json:"success"`
	Users   []string `json:"users"`
}
