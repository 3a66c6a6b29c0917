package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/server/auth"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repotest"
)

func seedUser(t *testing.T, s *UserService, email, password, role string) *models.User {
	t.Helper()
	u, err := s.Create(context.Background(), CreateUserInput{Email: email, Password: password, Name: "N", Role: role})
	require.NoError(t, err)
	return u
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewManager()
	s := newUserService(t, db, rm)
	u := seedUser(t, s, "Ann@Example.com", "pw", common.RoleAdmin)

	pair, err := s.Login(context.Background(), "  ann@example.com ", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())

	_, err = rm.RefreshTokensRepo.Find(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
}

func TestLogin_BadCredentials(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())
	seedUser(t, s, "ann@example.com", "pw", "")

	_, err := s.Login(context.Background(), "ann@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(context.Background(), "ghost@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_LockedOutAfterRepeatedFailures(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())
	seedUser(t, s, "ann@example.com", "pw", "")

	for i := 0; i < 3; i++ {
		_, err := s.Login(context.Background(), "ann@example.com", "wrong")
		require.ErrorIs(t, err, common.ErrorUnauthorized)
	}

	// even the right password is refused while locked
	_, err := s.Login(context.Background(), "ann@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrTooManyAttempts)
}

func TestLogin_SuccessResetsFailures(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())
	seedUser(t, s, "ann@example.com", "pw", "")

	for i := 0; i < 2; i++ {
		_, _ = s.Login(context.Background(), "ann@example.com", "wrong")
	}
	_, err := s.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = s.Login(context.Background(), "ann@example.com", "wrong")
	}
	_, err = s.Login(context.Background(), "ann@example.com", "pw")
	assert.NoError(t, err)
}

func TestLogin_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewManager()
	rm.UsersRepo.Err = errBoom{}
	s := newUserService(t, db, rm)

	_, err := s.Login(context.Background(), "a@x", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefresh_RotatesToken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := repotest.NewManager()
	s := newUserService(t, db, rm)
	seedUser(t, s, "ann@example.com", "pw", "")

	first, err := s.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)

	second, err := s.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = rm.RefreshTokensRepo.Find(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorNotFound, "old token consumed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_UnknownAndExpired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := repotest.NewManager()
	s := newUserService(t, db, rm)
	seedUser(t, s, "ann@example.com", "pw", "")

	_, err := s.Refresh(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	pair, err := s.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	rm.RefreshTokensRepo.Expire(pair.RefreshToken)

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestRefresh_TokenConsumedConcurrently(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := repotest.NewManager()
	s := newUserService(t, db, rm)
	seedUser(t, s, "ann@example.com", "pw", "")

	pair, err := s.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)

	// another refresh wins the race after Find succeeded
	rm.RefreshTokensRepo.BeforeDelete = rm.RefreshTokensRepo.Revoke

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_TxRolledBackOnError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := repotest.NewManager()
	s := newUserService(t, db, rm)
	u := seedUser(t, s, "ann@example.com", "pw", "")
	require.NoError(t, rm.UsersRepo.Delete(context.Background(), u.ID))
	// a token left behind for a user that no longer exists
	require.NoError(t, rm.RefreshTokensRepo.Create(context.Background(), u.ID, "tok", testConfig().RefreshTokenValidityDuration))

	_, err := s.Refresh(context.Background(), "tok")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())

	_, err := s.Create(context.Background(), CreateUserInput{Email: "", Password: "x"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Create(context.Background(), CreateUserInput{Email: "a@x", Password: ""})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestCreate_RoleAndDuplicate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())

	u := seedUser(t, s, "a@x", "pw", "superuser")
	assert.Equal(t, common.RoleUser, u.Role)
	assert.NotEqual(t, "pw", u.PasswordHash)

	_, err := s.Create(context.Background(), CreateUserInput{Email: "A@X", Password: "pw"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpdate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())
	u := seedUser(t, s, "a@x", "pw", "")

	name, role, pw, empty := "New", "admin", "pw2", ""
	got, err := s.Update(context.Background(), u.ID, UpdateUserInput{Name: &name, Role: &role, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, common.RoleAdmin, got.Role)

	// empty values leave fields as they are
	got, err = s.Update(context.Background(), u.ID, UpdateUserInput{Name: &empty})
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	_, err = s.Login(context.Background(), "a@x", "pw2")
	require.NoError(t, err)

	_, err = s.Update(context.Background(), "missing", UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteThenList(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())
	a := seedUser(t, s, "a@x", "pw", "")
	seedUser(t, s, "b@x", "pw", "")

	require.NoError(t, s.Delete(context.Background(), a.ID))
	require.NoError(t, s.Delete(context.Background(), a.ID))

	list, err := s.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b@x", list[0].Email)

	_, err = s.Me(context.Background(), a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_Filters(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, repotest.NewManager())
	seedUser(t, s, "ann@x", "pw", common.RoleAdmin)
	seedUser(t, s, "bob@x", "pw", "")

	list, err := s.List(context.Background(), models.UserFilter{Role: "admin"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ann@x", list[0].Email)

	list, err = s.List(context.Background(), models.UserFilter{Search: " BOB "})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("seeds when missing", func(t *testing.T) {
		db, _ := newSQLMockDB(t)
		rm := repotest.NewManager()
		s := newUserService(t, db, rm)

		require.NoError(t, s.EnsureAdmin(context.Background()))
		u, err := rm.UsersRepo.GetByEmail(context.Background(), "admin@bioguard.com")
		require.NoError(t, err)
		assert.Equal(t, common.RoleAdmin, u.Role)
		assert.Equal(t, "Administrador Principal", u.Name)

		// second run is a no-op
		require.NoError(t, s.EnsureAdmin(context.Background()))
		n, _ := rm.UsersRepo.CountByRole(context.Background(), common.RoleAdmin)
		assert.Equal(t, 1, n)
	})

	t.Run("promotes existing user", func(t *testing.T) {
		db, _ := newSQLMockDB(t)
		rm := repotest.NewManager()
		s := newUserService(t, db, rm)
		seedUser(t, s, "admin@bioguard.com", "other", common.RoleUser)

		require.NoError(t, s.EnsureAdmin(context.Background()))
		u, err := rm.UsersRepo.GetByEmail(context.Background(), "admin@bioguard.com")
		require.NoError(t, err)
		assert.Equal(t, common.RoleAdmin, u.Role)
	})

	t.Run("repo error", func(t *testing.T) {
		db, _ := newSQLMockDB(t)
		rm := repotest.NewManager()
		rm.UsersRepo.Err = errBoom{}
		s := newUserService(t, db, rm)

		err := s.EnsureAdmin(context.Background())
		require.Error(t, err)
		assert.True(t, errors.As(err, &errBoom{}))
	})
}
