package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repomanager"
)

// Recognition is the outcome of matching a captured photo.
type Recognition struct {
	Matched bool
	Person  *models.Person
	Action  string
	LogID   string
}

// RecognitionService simulates face matching: a capture matches a person
// only when its bytes hash to the same digest as the registered photo.
type RecognitionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logs        *AccessLogService
}

func NewRecognitionService(db *sql.DB, m repomanager.RepositoryManager, logs *AccessLogService) *RecognitionService {
	return &RecognitionService{db: db, repomanager: m, logs: logs}
}

// Recognize looks up the photo and, on a match, writes an access log with
// the decision implied by the person's list. No log is written otherwise.
func (s *RecognitionService) Recognize(ctx context.Context, photo []byte, userID string) (*Recognition, error) {
	ctx, span := tracer.Start(ctx, "RecognitionService.Recognize")
	defer span.End()

	if len(photo) == 0 {
		return nil, common.ErrorPhotoMissing
	}

	person, err := s.repomanager.People(s.db).FindByPhotoHash(ctx, PhotoHash(photo))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			span.SetAttributes(attribute.Bool("matched", false))
			return &Recognition{Matched: false}, nil
		}
		return nil, fmt.Errorf("error matching photo: %w", err)
	}

	action := common.ActionGranted
	if person.ListType == common.ListBlacklist {
		action = common.ActionDenied
	}

	log, err := s.logs.Create(ctx, person.ID, action, userID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Bool("matched", true), attribute.String("action", action))
	return &Recognition{Matched: true, Person: person, Action: action, LogID: log.ID}, nil
}
