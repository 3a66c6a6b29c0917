package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/bioguard/internal/common"
	"github.com/dmitrijs2005/bioguard/internal/cryptox"
	"github.com/dmitrijs2005/bioguard/internal/dbx"
	"github.com/dmitrijs2005/bioguard/internal/logging"
	"github.com/dmitrijs2005/bioguard/internal/server/auth"
	"github.com/dmitrijs2005/bioguard/internal/server/config"
	"github.com/dmitrijs2005/bioguard/internal/server/limiter"
	"github.com/dmitrijs2005/bioguard/internal/server/models"
	"github.com/dmitrijs2005/bioguard/internal/server/repositories/repomanager"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// UpdateUserInput fields left nil or empty are not changed.
type UpdateUserInput struct {
	Name     *string
	Role     *string
	Password *string
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	limiter                      limiter.Limiter
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	adminEmail                   string
	adminPassword                string
	adminName                    string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, l limiter.Limiter, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		limiter:                      l,
		logger:                       logger.With("service", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
		adminEmail:                   cfg.AdminEmail,
		adminPassword:                cfg.AdminPassword,
		adminName:                    cfg.AdminName,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials and issues a token pair. Unknown emails and
// wrong passwords are both reported as common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	ctx, span := tracer.Start(ctx, "UserService.Login")
	defer span.End()

	email = normalizeEmail(email)

	if err := s.limiter.Check(ctx, email); err != nil {
		if errors.Is(err, common.ErrTooManyAttempts) {
			return nil, err
		}
		// a broken limiter backend must not lock everybody out
		s.logger.Warn(ctx, "login limiter unavailable", "error", err)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.recordFailure(ctx, email)
			return nil, common.ErrorUnauthorized
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	ok, err := cryptox.CheckPassword(user.PasswordHash, []byte(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, common.ErrorUnauthorized
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn(ctx, "login limiter reset failed", "error", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	return s.generateTokenPair(ctx, s.db, user)
}

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn(ctx, "login limiter update failed", "error", err)
	}
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed in the same transaction that stores its successor.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		_ = s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// consumed by a concurrent refresh
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error loading user: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, db dbx.DBTX, user *models.User) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Role != "" {
		filter.Role = common.NormalizeRole(filter.Role)
	}

	users, err := s.repomanager.Users(s.db).List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// Create registers a new account. Any role other than admin becomes user.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	hash, err := cryptox.HashPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         common.NormalizeRole(in.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	var patch models.UserPatch

	if in.Name != nil && *in.Name != "" {
		patch.Name = in.Name
	}
	if in.Role != nil && *in.Role != "" {
		role := common.NormalizeRole(*in.Role)
		patch.Role = &role
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := cryptox.HashPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		patch.PasswordHash = &hash
	}

	user, err := s.repomanager.Users(s.db).Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

// EnsureAdmin seeds the configured admin account when no admin exists. If
// the email is already taken by a plain user, that account is promoted.
func (s *UserService) EnsureAdmin(ctx context.Context) error {
	repo := s.repomanager.Users(s.db)

	n, err := repo.CountByRole(ctx, common.RoleAdmin)
	if err != nil {
		return fmt.Errorf("error counting admins: %w", err)
	}
	if n > 0 {
		return nil
	}

	user, err := s.Create(ctx, CreateUserInput{
		Email:    s.adminEmail,
		Password: s.adminPassword,
		Name:     s.adminName,
		Role:     common.RoleAdmin,
	})
	if err == nil {
		s.logger.Info(ctx, "default admin created", "email", user.Email)
		return nil
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return err
	}

	existing, err := repo.GetByEmail(ctx, normalizeEmail(s.adminEmail))
	if err != nil {
		return fmt.Errorf("error loading admin candidate: %w", err)
	}
	role := common.RoleAdmin
	if _, err := repo.Update(ctx, existing.ID, models.UserPatch{Role: &role}); err != nil {
		return fmt.Errorf("error promoting admin: %w", err)
	}
	s.logger.Warn(ctx, "existing user promoted to admin", "email", existing.Email)
	return nil
}
