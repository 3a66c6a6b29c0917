package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bioguard/internal/server/storage"
)

const photoContentType = "image/jpeg"

type CreatePersonInput struct {
	Name      string
	ListType  string
	Photo     []byte
	CreatedBy string
}

type UpdatePersonInput struct {
	Name     *string
	ListType *string
}

type PeopleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.PhotoStore
	logger      logging.Logger
}

func NewPeopleService(db *sql.DB, m repomanager.RepositoryManager, store storage.PhotoStore, logger logging.Logger) *PeopleService {
	return &PeopleService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger.With("service", "people"),
	}
}

// List filters by name substring and list type. An unknown list type is
// treated as no filter.
func (s *PeopleService) List(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.ListType != common.ListWhitelist && filter.ListType != common.ListBlacklist {
		filter.ListType = ""
	}

	people, err := s.repomanager.People(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing people: %w", err)
	}
	return people, nil
}

// Create uploads the photo and then inserts the record. If the insert
// fails the uploaded object is removed again.
func (s *PeopleService) Create(ctx context.Context, in CreatePersonInput) (*models.Person, error) {
	ctx, span := tracer.Start(ctx, "PeopleService.Create")
	defer span.End()

	if len(in.Photo) == 0 {
		return nil, common.ErrorPhotoMissing
	}

	key := storage.NewPhotoKey()
	if err := s.store.Put(ctx, key, in.Photo, photoContentType); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: photo upload: %v", common.ErrorInternal, err)
	}

	person, err := s.repomanager.People(s.db).Create(ctx, &models.Person{
		Name:      strings.TrimSpace(in.Name),
		ListType:  common.NormalizeListType(in.ListType),
		PhotoKey:  key,
		PhotoHash: PhotoHash(in.Photo),
		CreatedBy: in.CreatedBy,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "orphaned photo object", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error creating person: %w", err)
	}

	s.logger.Info(ctx, "person registered", "person_id", person.ID, "list", person.ListType)
	return person, nil
}

func (s *PeopleService) Update(ctx context.Context, id string, in UpdatePersonInput) (*models.Person, error) {
	var patch models.PersonPatch

	if in.Name != nil && *in.Name != "" {
		patch.Name = in.Name
	}
	if in.ListType != nil && *in.ListType != "" {
		lt := common.NormalizeListType(*in.ListType)
		patch.ListType = &lt
	}

	person, err := s.repomanager.People(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating person: %w", err)
	}
	return person, nil
}

// Delete removes the record and its photo. Deleting a missing person is not
// an error, and photo removal failures are only logged.
func (s *PeopleService) Delete(ctx context.Context, id string) error {
	person, err := s.repomanager.People(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error deleting person: %w", err)
	}

	if person.PhotoKey != "" {
		if err := s.store.Delete(ctx, person.PhotoKey); err != nil {
			s.logger.Warn(ctx, "photo delete failed", "key", person.PhotoKey, "error", err)
		}
	}
	return nil
}

// Photo returns the stored photo bytes together with the person record.
func (s *PeopleService) Photo(ctx context.Context, id string) ([]byte, *models.Person, error) {
	person, err := s.repomanager.People(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading person: %w", err)
	}

	data, err := s.store.Get(ctx, person.PhotoKey)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading photo: %w", err)
	}
	return data, person, nil
}
