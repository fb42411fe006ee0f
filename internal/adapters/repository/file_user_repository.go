package repository

import (
	"context"
	"fmt"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/ports"
)

// FileUserRepository implements ports.UserRepository over users.json
type FileUserRepository struct {
	doc *Document[[]entities.User]
}

// NewFileUserRepository creates a new file-backed user repository
func NewFileUserRepository(store *FileStore) ports.UserRepository {
	return &FileUserRepository{doc: store.Users}
}

func (r *FileUserRepository) Create(ctx context.Context, user *entities.User) error {
	err := r.doc.Update(ctx, func(users *[]entities.User) error {
		for _, u := range *users {
			if u.Username == user.Username {
				return entities.ErrUsernameTaken
			}
		}
		*users = append(*users, *user)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *FileUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	users, err := r.doc.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	for _, u := range users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *FileUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	users, err := r.doc.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*entities.User, 0, len(users))
	for i := range users {
		out = append(out, &users[i])
	}
	return out, nil
}
