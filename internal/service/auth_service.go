package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/auth"
	"github.com/spec-kit/field-report-service/internal/config"
	"github.com/spec-kit/field-report-service/internal/domain"
	"github.com/spec-kit/field-report-service/internal/repository"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

// LoginThrottle counts failed attempts per key inside a rolling window.
// Implementations are best effort: an unavailable backend must never block a
// login.
type LoginThrottle interface {
	TooManyAttempts(ctx context.Context, key string) bool
	RecordFailure(ctx context.Context, key string)
}

// AuthService coordinates login and token issuance.
type AuthService struct {
	users    repository.UserRepository
	codec    *auth.TokenCodec
	throttle LoginThrottle
	logger   *zap.Logger
}

// NewAuthService builds the service. throttle may be nil.
func NewAuthService(cfg config.Config, users repository.UserRepository, throttle LoginThrottle, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		codec:    auth.NewTokenCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL()),
		throttle: throttle,
		logger:   logger,
	}
}

// Login authenticates by email and password and issues a session token.
// Unknown email and wrong password produce the identical error so callers
// cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apperrors.NewValidationError("email and password required", nil)
	}

	if s.throttle != nil && s.throttle.TooManyAttempts(ctx, email) {
		return "", nil, apperrors.NewUnauthorized("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.recordFailure(ctx, email)
			return "", nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return "", nil, apperrors.NewUpstreamFailure(err)
	}

	if !auth.VerifyCredential(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return "", nil, apperrors.NewUnauthorized("invalid credentials")
	}

	session := s.codec.NewSession(user.UUID, user.Email, user.Role)
	token, err := s.codec.Sign(session)
	if err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}
	return token, &session, nil
}

// Logout acknowledges the call. Tokens are stateless, so there is nothing to
// revoke server-side; the client discards its copy.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// Codec exposes the token codec for guard construction.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle != nil {
		s.throttle.RecordFailure(ctx, email)
	}
}
