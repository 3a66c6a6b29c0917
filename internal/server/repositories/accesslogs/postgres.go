package accesslogs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/bioguard/internal/dbx"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, log *models.AccessLog) (*models.AccessLog, error) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	var userID any
	if _, err := uuid.Parse(log.UserID); err == nil {
		userID = log.UserID
	}

	query :=
		`INSERT INTO access_logs (id, person_id, action, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING timestamp
		 `

	if err := r.db.QueryRowContext(ctx, query, log.ID, log.PersonID, log.Action, userID).Scan(&log.Timestamp); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return log, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.AccessLogFilter) ([]*models.AccessLog, error) {
	query :=
		`SELECT l.id, l.person_id, l.action, l.timestamp, l.user_id, p.name
		 FROM access_logs l
		 LEFT JOIN people p ON p.id = l.person_id
		 WHERE ($1 = '' OR l.person_id::text = $1)
		 ORDER BY l.timestamp DESC
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, filter.PersonID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AccessLog, 0)
	for rows.Next() {
		l := &models.AccessLog{}
		var userID, personName sql.NullString
		if err := rows.Scan(&l.ID, &l.PersonID, &l.Action, &l.Timestamp, &userID, &personName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		l.UserID = userID.String
		l.PersonName = personName.String
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
