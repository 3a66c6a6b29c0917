package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/dbx"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

const personColumns = `id, name, list_type, photo_key, photo_hash, created_by, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(s scanner) (*models.Person, error) {
	p := &models.Person{}
	var createdBy sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &p.ListType, &p.PhotoKey, &p.PhotoHash, &createdBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedBy = createdBy.String
	return p, nil
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Person, error) {
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Person) (*models.Person, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var createdBy any
	if _, err := uuid.Parse(p.CreatedBy); err == nil {
		createdBy = p.CreatedBy
	}

	query :=
		`INSERT INTO people (id, name, list_type, photo_key, photo_hash, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.ListType, p.PhotoKey, p.PhotoHash, createdBy).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Person, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1`

	return r.one(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindByPhotoHash(ctx context.Context, hash string) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE photo_hash = $1 ORDER BY created_at ASC LIMIT 1`

	return r.one(r.db.QueryRowContext(ctx, query, hash))
}

func (r *PostgresRepository) List(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR list_type = $2)
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, filter.Search, filter.ListType)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.PersonPatch) (*models.Person, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	var name, listType any
	if patch.Name != nil {
		name = *patch.Name
	}
	if patch.ListType != nil {
		listType = *patch.ListType
	}

	query := `UPDATE people
		 SET name = COALESCE($2, name),
		     list_type = COALESCE($3, list_type),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING ` + personColumns

	return r.one(r.db.QueryRowContext(ctx, query, id, name, listType))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Person, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `DELETE FROM people WHERE id = $1 RETURNING ` + personColumns

	return r.one(r.db.QueryRowContext(ctx, query, id))
}
