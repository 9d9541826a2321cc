package repository

import (
	"context"

	"filedrive/internal/model"
)

// UserRepository defines data access for accounts.
type UserRepository interface {
	// Create inserts a user, returning ErrConflict if the email is taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}
