package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService registers users, verifies credentials and revokes tokens
type AuthService struct {
	db         *gorm.DB
	jwtManager *auth.JWTManager
	blacklist  *auth.BlacklistService
	log        *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, jwtManager *auth.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{
		db:         db,
		jwtManager: jwtManager,
		blacklist:  auth.NewBlacklistService(db),
		log:        log,
	}
}

// RegisterInput carries validated registration fields
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is the authenticated user and the bearer token issued for them
type AuthResult struct {
	User  *model.User
	Token *auth.IssuedToken
}

// Register creates the user in its own transaction and then issues a token.
// A token failure after commit leaves the user in place.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		s.log.Error("Failed to check email availability", zap.Error(err))
		return nil, internal("check email", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPassword, err)
	}
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hashedPassword,
	}

	err = runInTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.log.Error("Failed to register user", zap.String("email", email), zap.Error(err))
		return nil, internal("create user", err)
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, internal("issue token", err)
	}

	s.log.Info("User registered", zap.Uint("user_id", user.ID))
	return &AuthResult{User: &user, Token: token}, nil
}

// Login checks credentials and issues an additional token. Existing tokens
// stay valid.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.log.Error("Failed to load user for login", zap.Error(err))
		return nil, internal("load user", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, internal("verify password", err)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.rehashPassword(ctx, &user, password)
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.TokenVersion)
	if err != nil {
		s.log.Error("Failed to issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, internal("issue token", err)
	}

	return &AuthResult{User: &user, Token: token}, nil
}

// Logout revokes every token of user by bumping its token version, and
// blacklists the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, user *model.User, jti string, expiresAt time.Time) error {
	if err := s.blacklist.RevokeAllUserTokens(ctx, user.ID); err != nil {
		s.log.Error("Failed to revoke user tokens", zap.Uint("user_id", user.ID), zap.Error(err))
		return internal("revoke tokens", err)
	}

	if jti != "" {
		if err := s.blacklist.RevokeToken(ctx, jti, user.ID, expiresAt, auth.ReasonLogout); err != nil {
			// token_version already invalidates it
			s.log.Warn("Failed to blacklist token", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}

// rehashPassword upgrades a hash made with an outdated cost. Failures only
// leave the old hash in place.
func (s *AuthService) rehashPassword(ctx context.Context, user *model.User, password string) {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		s.log.Warn("Failed to rehash password", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}

	err = s.db.WithContext(ctx).Model(user).UpdateColumn("password_hash", hashed).Error
	if err != nil {
		s.log.Warn("Failed to store rehashed password", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	user.PasswordHash = hashed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
