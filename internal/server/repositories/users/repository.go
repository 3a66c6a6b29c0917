// Package users declares the repository contract for operator accounts and
// its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

type Repository interface {
	// Create inserts user, assigning ID and CreatedAt. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	// Update applies the non-nil fields of patch and returns the stored row.
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	// Delete removes the user; a missing id is not an error.
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role string) (int, error)
}
