package services

import (
	"context"
	"fmt"

	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/ports"
)

// UserService handles user listing
type UserService struct {
	userRepo ports.UserRepository
	logger   *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.WithComponent("user_service"),
	}
}

// ListUsernames returns every registered username in insertion order.
// Passwords never leave this service.
func (s *UserService) ListUsernames(ctx context.Context) ([]string, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}
