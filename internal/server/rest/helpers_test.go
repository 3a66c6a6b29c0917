package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/auth"
	"github.com/dmitrijs2005/bioguard/internal/server/config"
	"github.com/dmitrijs2005/bioguard/internal/server/events"
	"github.com/dmitrijs2005/bioguard/internal/server/limiter"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/bioguard/internal/server/services"
	"github.com/dmitrijs2005/bioguard/internal/server/storage"
)

const testSecret = "test-secret"

type testEnv struct {
	handler http.Handler
	rm      *repotest.Manager
	store   *storage.MemoryStore
	hub     *events.Hub
	users   *services.UserService
	people  *services.PeopleService
	mock    sqlmock.Sqlmock

	admin      *models.User
	user       *models.User
	adminToken string
	userToken  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BcryptCost:                   4,
		MaxPhotoBytes:                1 << 10,
	}

	rm := repotest.NewManager()
	store := storage.NewMemoryStore()
	hub := events.NewHub(8)
	lim := limiter.NewMemoryLimiter(limiter.Options{MaxAttempts: 3, Window: time.Minute})

	us := services.NewUserService(db, rm, lim, logging.Nop{}, cfg)
	ps := services.NewPeopleService(db, rm, store, logging.Nop{})
	ls := services.NewAccessLogService(db, rm, hub, logging.Nop{})
	rs := services.NewRecognitionService(db, rm, ls)

	h := NewHandler(HandlerDeps{
		Users:         us,
		People:        ps,
		Logs:          ls,
		Recognition:   rs,
		Hub:           hub,
		Logger:        logging.Nop{},
		SecretKey:     testSecret,
		MaxPhotoBytes: cfg.MaxPhotoBytes,
	})
	srv := NewServer(":0", h, logging.Nop{}, "")

	env := &testEnv{
		handler: srv.Handler(),
		rm:      rm,
		store:   store,
		hub:     hub,
		users:   us,
		people:  ps,
		mock:    mock,
	}

	ctx := context.Background()
	env.admin, err = us.Create(ctx, services.CreateUserInput{Email: "admin@bioguard.com", Password: "admin123", Name: "Admin", Role: common.RoleAdmin})
	require.NoError(t, err)
	env.user, err = us.Create(ctx, services.CreateUserInput{Email: "guard@bioguard.com", Password: "guard123", Name: "Guard"})
	require.NoError(t, err)

	env.adminToken = tokenFor(t, env.admin)
	env.userToken = tokenFor(t, env.user)
	return env
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(auth.Claims{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return token
}

// do sends body as JSON (nil means no body) with an optional bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
