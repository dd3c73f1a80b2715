// Package auth handles account registration, session tokens and role checks.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/musegen/muse-server/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	store        *storage.Store
	adminEmails  map[string]bool
	initialGrant int64
	sessionTTL   time.Duration
	log          *zap.Logger
}

func NewService(store *storage.Store, adminEmails []string, initialGrant int64, sessionTTL time.Duration, log *zap.Logger) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		store:        store,
		adminEmails:  admins,
		initialGrant: initialGrant,
		sessionTTL:   sessionTTL,
		log:          log.Named("auth"),
	}
}

// Register creates the account with the configured initial credit grant and
// returns a fresh session token. The admin role is assigned from config at
// registration and lives on the account record from then on.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*storage.User, string, error) {
	if len(password) < 8 {
		return nil, "", errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	role := storage.RoleUser
	if s.adminEmails[strings.ToLower(strings.TrimSpace(email))] {
		role = storage.RoleAdmin
	}

	user := storage.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		Credits:      s.initialGrant,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return nil, "", err
	}

	token, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Int64("initial_credits", user.Credits))
	return &user, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*storage.User, string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.newSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// UserFromToken resolves a bearer token, rejecting unknown and expired
// sessions.
func (s *Service) UserFromToken(ctx context.Context, token string) (*storage.User, error) {
	if token == "" {
		return nil, storage.ErrNotFound
	}
	return s.store.SessionUser(ctx, token)
}

func (s *Service) newSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.store.CreateSession(ctx, token, userID, time.Now().Add(s.sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// IsAdmin reports whether the account carries the admin role.
func IsAdmin(user *storage.User) bool {
	return user != nil && user.Role == storage.RoleAdmin
}
