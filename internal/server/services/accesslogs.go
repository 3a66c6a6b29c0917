package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/events"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repomanager"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

type AccessLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	logger      logging.Logger
}

func NewAccessLogService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, logger logging.Logger) *AccessLogService {
	return &AccessLogService{
		db:          db,
		repomanager: m,
		publisher:   p,
		logger:      logger.With("service", "accesslogs"),
	}
}

// ClampLimit maps a requested page size onto [1, MaxLogLimit]; zero or
// negative values select DefaultLogLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLogLimit
	case limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return limit
	}
}

func (s *AccessLogService) List(ctx context.Context, filter models.AccessLogFilter) ([]*models.AccessLog, error) {
	filter.Limit = ClampLimit(filter.Limit)

	logs, err := s.repomanager.AccessLogs(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing access logs: %w", err)
	}
	return logs, nil
}

// Create records a decision for an existing person and publishes it. Any
// action other than access_denied is stored as access_granted.
func (s *AccessLogService) Create(ctx context.Context, personID, action, userID string) (*models.AccessLog, error) {
	if _, err := s.repomanager.People(s.db).GetByID(ctx, personID); err != nil {
		return nil, fmt.Errorf("error loading person: %w", err)
	}

	log, err := s.repomanager.AccessLogs(s.db).Create(ctx, &models.AccessLog{
		PersonID: personID,
		Action:   common.NormalizeAction(action),
		UserID:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating access log: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewAccessLogEvent(log)); err != nil {
		s.logger.Warn(ctx, "access event not published", "log_id", log.ID, "error", err)
	}

	return log, nil
}
