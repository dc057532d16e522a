package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/platform/logger"
	"github.com/davrell/mnemo-api/internal/store"
)

// Service handles registration and login.
type Service struct {
	users  store.UserStore
	hasher PasswordHasher
	tokens TokenService
	logger *slog.Logger
}

// NewService creates the auth service.
func NewService(
	users store.UserStore,
	hasher PasswordHasher,
	tokens TokenService,
	log *slog.Logger,
) *Service {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("user store cannot be nil")
	}
	if hasher == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("password hasher cannot be nil")
	}
	if tokens == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("token service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: log.With(slog.String("component", "auth_service")),
	}
}

// AuthResult is a successful registration or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Register creates a user and returns a signed access token.
func (s *Service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(email, hashed)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns a signed access token. Unknown
// emails and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return &AuthResult{User: user, Token: token}, nil
}
