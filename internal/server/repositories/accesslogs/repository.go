// Package accesslogs persists access decisions.
package accesslogs

import (
	"context"

	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, log *models.AccessLog) (*models.AccessLog, error)
	// List returns logs newest first, at most filter.Limit rows.
	List(ctx context.Context, filter models.AccessLogFilter) ([]*models.AccessLog, error)
}
