// Package repotest provides an in-memory RepositoryManager for tests of the
// layers above the database. Every repository shares one Manager state, and
// setting Err on a repository makes all of its methods fail with it.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/dbx"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/accesslogs"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/people"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/users"
)

type Manager struct {
	mu sync.Mutex

	UsersRepo         *Users
	PeopleRepo        *People
	AccessLogsRepo    *AccessLogs
	RefreshTokensRepo *RefreshTokens

	MigrateErr error
}

func NewManager() *Manager {
	m := &Manager{}
	m.UsersRepo = &Users{m: m, rows: map[string]*models.User{}}
	m.PeopleRepo = &People{m: m, rows: map[string]*models.Person{}}
	m.AccessLogsRepo = &AccessLogs{m: m}
	m.RefreshTokensRepo = &RefreshTokens{m: m, rows: map[string]*models.RefreshToken{}}
	return m
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return m.MigrateErr }

func (m *Manager) Users(dbx.DBTX) users.Repository                 { return m.UsersRepo }
func (m *Manager) People(dbx.DBTX) people.Repository               { return m.PeopleRepo }
func (m *Manager) AccessLogs(dbx.DBTX) accesslogs.Repository       { return m.AccessLogsRepo }
func (m *Manager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.RefreshTokensRepo }

// now keeps created_at strictly increasing so ordering is deterministic.
var clock = struct {
	sync.Mutex
	last time.Time
}{}

func now() time.Time {
	clock.Lock()
	defer clock.Unlock()
	t := time.Now()
	if !t.After(clock.last) {
		t = clock.last.Add(time.Microsecond)
	}
	clock.last = t
	return t
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type Users struct {
	m    *Manager
	rows map[string]*models.User
	Err  error
}

func (r *Users) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, existing := range r.rows {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now()
	cp := *u
	r.rows[u.ID] = &cp
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Users) List(_ context.Context, f models.UserFilter) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*models.User, 0)
	for _, u := range r.rows {
		if f.Search != "" && !contains(u.Name, f.Search) && !contains(u.Email, f.Search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Users) Update(_ context.Context, id string, p models.UserPatch) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	cp := *u
	return &cp, nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	delete(r.rows, id)
	for token, rt := range r.m.RefreshTokensRepo.rows {
		if rt.UserID == id {
			delete(r.m.RefreshTokensRepo.rows, token)
		}
	}
	return nil
}

func (r *Users) CountByRole(_ context.Context, role string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	n := 0
	for _, u := range r.rows {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type People struct {
	m    *Manager
	rows map[string]*models.Person
	Err  error
}

func (r *People) Create(_ context.Context, p *models.Person) (*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.rows[p.ID] = &cp
	return p, nil
}

func (r *People) GetByID(_ context.Context, id string) (*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *People) FindByPhotoHash(_ context.Context, hash string) (*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var found *models.Person
	for _, p := range r.rows {
		if p.PhotoHash == hash && (found == nil || p.CreatedAt.Before(found.CreatedAt)) {
			found = p
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	cp := *found
	return &cp, nil
}

func (r *People) List(_ context.Context, f models.PersonFilter) ([]*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*models.Person, 0)
	for _, p := range r.rows {
		if f.Search != "" && !contains(p.Name, f.Search) {
			continue
		}
		if f.ListType != "" && p.ListType != f.ListType {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *People) Update(_ context.Context, id string, patch models.PersonPatch) (*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.ListType != nil {
		p.ListType = *patch.ListType
	}
	p.UpdatedAt = now()
	cp := *p
	return &cp, nil
}

func (r *People) Delete(_ context.Context, id string) (*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.rows, id)
	return p, nil
}

type AccessLogs struct {
	m    *Manager
	rows []*models.AccessLog
	Err  error
}

func (r *AccessLogs) Create(_ context.Context, l *models.AccessLog) (*models.AccessLog, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Timestamp = now()
	cp := *l
	r.rows = append(r.rows, &cp)
	return l, nil
}

func (r *AccessLogs) List(_ context.Context, f models.AccessLogFilter) ([]*models.AccessLog, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*models.AccessLog, 0)
	for i := len(r.rows) - 1; i >= 0 && (f.Limit <= 0 || len(out) < f.Limit); i-- {
		l := r.rows[i]
		if f.PersonID != "" && l.PersonID != f.PersonID {
			continue
		}
		cp := *l
		if p, ok := r.m.PeopleRepo.rows[l.PersonID]; ok {
			cp.PersonName = p.Name
		}
		out = append(out, &cp)
	}
	return out, nil
}

// Len reports the number of stored logs.
func (r *AccessLogs) Len() int {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.rows)
}

type RefreshTokens struct {
	m    *Manager
	rows map[string]*models.RefreshToken
	Err  error

	// BeforeDelete, when set, runs at the start of Delete. Tests use it to
	// consume a token between Find and Delete.
	BeforeDelete func(token string)
}

func (r *RefreshTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.rows[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *RefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	rt, ok := r.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	return &cp, nil
}

func (r *RefreshTokens) Delete(_ context.Context, token string) error {
	if r.BeforeDelete != nil {
		r.BeforeDelete(token)
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, token)
	return nil
}

// Revoke removes token without any hooks.
func (r *RefreshTokens) Revoke(token string) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.rows, token)
}

// Expire moves the expiry of token into the past.
func (r *RefreshTokens) Expire(token string) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if rt, ok := r.rows[token]; ok {
		rt.Expires = time.Now().Add(-time.Minute)
	}
}
