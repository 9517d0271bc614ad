// Package auth implements credential verification and bearer-token
// issuance/resolution over the storage layer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/storage"
)

// DefaultTokenTTL is the absolute lifetime of an issued session token.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned by VerifyUser for any mismatch: unknown
// username or wrong secret are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service implements user provisioning, credential verification and the
// session token lifecycle.
type Service struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokens   storage.TokenStorage
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService creates an auth service.
// tokenTTL <= 0 falls back to DefaultTokenTTL.
func NewService(logger *slog.Logger, users storage.UserStorage, tokens storage.TokenStorage, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// CreateUser provisions a new account with a bcrypt digest of the secret.
// The role is validated before anything touches storage. Returns
// storage.ErrUserAlreadyExists when the username is taken.
func (s *Service) CreateUser(ctx context.Context, username, secret string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", storage.ErrInvalidRole, role)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		SecretDigest: string(digest),
		Role:         role,
		CreatedAt:    s.now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("username", username),
		slog.String("user_id", user.ID),
		slog.String("role", string(role)))

	return user, nil
}

// VerifyUser checks a username/secret pair against the stored digest.
// Username lookup is exact-match; digest comparison is constant-time over
// the hash. Any mismatch yields ErrInvalidCredentials.
func (s *Service) VerifyUser(ctx context.Context, username, secret string) (*models.Identity, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.SecretDigest), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// IssueToken mints a new bearer token for the user and persists it.
// The value carries 256 bits of entropy from crypto/rand; expiry is absolute
// (issuance time + TTL). Prior tokens for the same user stay valid.
func (s *Service) IssueToken(ctx context.Context, userID string) (*models.SessionToken, error) {
	value, err := GenerateTokenValue()
	if err != nil {
		return nil, err
	}

	now := s.now()
	token := &models.SessionToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     value,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}

	if err := s.tokens.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to persist session token: %w", err)
	}

	return token, nil
}

// ResolveToken maps a presented token value to the owning user's current
// identity, or storage.ErrTokenNotFound when the token is unknown or
// expired. Expiry is evaluated at call time: a token is invalid the instant
// now reaches its expires_at.
func (s *Service) ResolveToken(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, storage.ErrTokenNotFound
	}
	return s.tokens.ResolveToken(ctx, token, s.now())
}
