// Package people stores registered persons (whitelist/blacklist roster).
package people

import (
	"context"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Person) (*models.Person, error)
	GetByID(ctx context.Context, id string) (*models.Person, error)
	// FindByPhotoHash returns the earliest registered person whose photo
	// digest equals hash, or common.ErrorNotFound.
	FindByPhotoHash(ctx context.Context, hash string) (*models.Person, error)
	List(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error)
	// Update applies the non-nil fields of patch and bumps updated_at.
	Update(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error)
	// Delete removes the person and returns the deleted row so the caller
	// can clean up the photo object.
	Delete(ctx context.Context, id string) (*models.Person, error)
}
