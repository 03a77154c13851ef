package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
	"github.com/jwalitptl/clinic-crm/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
	"github.com/jwalitptl/clinic-crm/pkg/security"
	"github.com/jwalitptl/clinic-crm/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
)

const (
	defaultMaxLoginAttempts = 5
	defaultLockoutDuration  = 15 * time.Minute
)

type Config struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
}

type Service struct {
	userRepo  repository.UserRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	validator validator.Validator
	metrics   *metrics.Metrics
	config    Config

	// failures counts consecutive failed logins per email, locks marks
	// emails that reached the limit. Both expire after the lockout period.
	failures *cache.Cache
	locks    *cache.Cache
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher,
	m *metrics.Metrics, config Config) *Service {
	if config.MaxLoginAttempts <= 0 {
		config.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = defaultLockoutDuration
	}
	return &Service{
		userRepo:  userRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		validator: validator.New(),
		metrics:   m,
		config:    config,
		failures:  cache.New(config.LockoutDuration, time.Minute),
		locks:     cache.New(config.LockoutDuration, time.Minute),
	}
}

// Login verifies the password against the stored bcrypt hash and issues a
// signed session token. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	key := strings.ToLower(req.Email)

	if _, locked := s.locks.Get(key); locked {
		s.record("locked")
		return nil, apperrors.Unauthorized("account temporarily locked, try again later", ErrAccountLocked)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("failed to load user: %w", err))
	}
	if user == nil || s.hasher.Compare(user.PasswordHash, req.Password) != nil {
		s.recordFailure(key)
		s.record("invalid")
		return nil, apperrors.Unauthorized("invalid credentials", ErrInvalidCredentials)
	}

	s.failures.Delete(key)

	token, expiresAt, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	s.record("success")
	log.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &model.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Profile(),
	}, nil
}

// ValidateToken re-verifies a session token. Nothing is kept server-side,
// so every call checks signature and expiry from scratch.
func (s *Service) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("authentication required", nil)
	}
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("session expired", err)
		}
		return nil, apperrors.Unauthorized("invalid token", err)
	}
	return claims, nil
}

// TokenTTL is how long issued tokens stay valid.
func (s *Service) TokenTTL() time.Duration {
	return s.jwtSvc.TTL()
}

// CreateUser stores an operator. password may already be a bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, email, name, role, password string) (*model.User, error) {
	hash := password
	if !security.IsHash(password) {
		var err error
		if hash, err = s.hasher.Hash(password); err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("password for %s: %v", email, err), err)
		}
	}
	if role == "" {
		role = model.RoleStaff
	}

	user := &model.User{Email: email, Name: name, Role: role, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.DuplicateEmail(email, err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}

func (s *Service) recordFailure(key string) {
	if err := s.failures.Add(key, 1, cache.DefaultExpiration); err == nil {
		if s.config.MaxLoginAttempts <= 1 {
			s.lock(key)
		}
		return
	}
	n, err := s.failures.IncrementInt(key, 1)
	if err != nil {
		// Expired between Add and IncrementInt.
		s.failures.Set(key, 1, cache.DefaultExpiration)
		return
	}
	if n >= s.config.MaxLoginAttempts {
		s.lock(key)
	}
}

func (s *Service) lock(key string) {
	s.locks.Set(key, true, cache.DefaultExpiration)
	s.failures.Delete(key)
	log.Warn().Str("email", key).Dur("lockout", s.config.LockoutDuration).Msg("too many failed logins, account locked")
}

func (s *Service) record(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}
