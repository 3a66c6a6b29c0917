package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/config"
	"github.com/dmitrijs2005/bioguard/internal/server/events"
	"github.com/dmitrijs2005/bioguard/internal/server/limiter"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repotest"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BcryptCost:                   4,
		AdminEmail:                   "admin@bioguard.com",
		AdminPassword:                "admin123",
		AdminName:                    "Administrador Principal",
	}
}

func newUserService(t *testing.T, db *sql.DB, rm *repotest.Manager) *UserService {
	t.Helper()
	l := limiter.NewMemoryLimiter(limiter.Options{MaxAttempts: 3, Window: time.Minute})
	return NewUserService(db, rm, l, logging.Nop{}, testConfig())
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}
