package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bioguard/internal/client/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *MemorySessionStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := &MemorySessionStore{}
	return New(srv.URL+"/", time.Second, store), store
}

func TestLogin_StoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["password"] != "admin123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.Session{Token: "a1", RefreshToken: "r1"})
	})
	c, store := newTestClient(t, mux)

	err := c.Login(context.Background(), "admin@bioguard.com", []byte("bad"))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, c.Login(context.Background(), "admin@bioguard.com", []byte("admin123")))
	s, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "a1", s.Token)
	assert.Equal(t, "r1", s.RefreshToken)
}

func TestDo_NotLoggedIn(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDo_RefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: "u1", Email: "a@b.c", Role: "admin"})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "r1", req["refreshToken"])
		writeJSON(w, http.StatusOK, models.Session{Token: "fresh", RefreshToken: "r2"})
	})
	c, store := newTestClient(t, mux)
	require.NoError(t, store.Save(&models.Session{Token: "stale", RefreshToken: "r1"}))

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, int32(1), refreshes.Load())

	s, _ := store.Load()
	assert.Equal(t, "r2", s.RefreshToken)
}

func TestDo_RefreshFailureClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Refresh token expired"})
	})
	c, store := newTestClient(t, mux)
	require.NoError(t, store.Save(&models.Session{Token: "stale", RefreshToken: "r1"}))

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDo_OtherErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden"})
	})
	c, store := newTestClient(t, mux)
	require.NoError(t, store.Save(&models.Session{Token: "t", RefreshToken: "r"}))

	_, err := c.ListUsers(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreatePerson_Multipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /people", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Maria", r.FormValue("name"))
		assert.Equal(t, "blacklist", r.FormValue("listType"))

		f, _, err := r.FormFile("photo")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "jpeg", string(data))

		writeJSON(w, http.StatusCreated, map[string]string{"id": "p1"})
	})
	c, store := newTestClient(t, mux)
	require.NoError(t, store.Save(&models.Session{Token: "t"}))

	id, err := c.CreatePerson(context.Background(), "Maria", "blacklist", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "p1", id)
}

func TestListLogs_Query(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /logs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.URL.Query().Get("personId"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []models.AccessLog{{ID: "l1", PersonID: "p1", Action: "access_granted"}})
	})
	c, store := newTestClient(t, mux)
	require.NoError(t, store.Save(&models.Session{Token: "t"}))

	logs, err := c.ListLogs(context.Background(), "p1", 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "l1", logs[0].ID)
}

func TestPing_Unavailable(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond, &MemorySessionStore{})
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestAPIError(t *testing.T) {
	assert.Equal(t, "server returned 500", (&APIError{Status: 500}).Error())
	assert.Equal(t, "server returned 404: Not found", (&APIError{Status: 404, Message: "Not found"}).Error())
	assert.ErrorIs(t, &APIError{Status: 404}, ErrNotFound)
	assert.NotErrorIs(t, &APIError{Status: 500}, ErrNotFound)
}
