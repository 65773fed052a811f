package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightstart/screening-api/internal/config"
	"github.com/brightstart/screening-api/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// UserStore is the account storage surface the service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	HasAdmin(ctx context.Context) (bool, error)
}

// Service handles registration, credential checks, and session lifecycle.
type Service struct {
	users    UserStore
	sessions *SessionStore
	cfg      config.AuthConfig
	logger   *zap.Logger
}

func NewService(users UserStore, sessions *SessionStore, cfg config.AuthConfig, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates a regular (non-admin) account.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-64 characters (letters, digits, _ . -)", models.ErrInvalidCredentials)
	}
	if len(password) < s.cfg.MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", models.ErrInvalidCredentials, s.cfg.MinPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("username", username))
	return user, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", models.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout invalidates the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to an identity.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	return s.sessions.Get(ctx, token)
}

// BootstrapAdmin creates the default admin account when none exists,
// mirroring first-run provisioning of the deployment.
func (s *Service) BootstrapAdmin(ctx context.Context) error {
	if !s.cfg.BootstrapAdmin {
		return nil
	}
	if s.cfg.AdminPassword == "" {
		s.logger.Warn("admin bootstrap enabled but ADMIN_PASSWORD is empty, skipping")
		return nil
	}

	exists, err := s.users.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.New(),
		Username:     s.cfg.AdminUsername,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("default admin user created", zap.String("username", admin.Username))
	return nil
}
