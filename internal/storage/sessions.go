package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	sess := Session{Token: token, UserID: userID, ExpiresAt: expiresAt}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SessionUser resolves a token to its user, rejecting expired sessions.
func (s *Store) SessionUser(ctx context.Context, token string) (*User, error) {
	var sess Session
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.db.WithContext(ctx).Delete(&Session{}, "token = ?", token).Error
		return nil, ErrNotFound
	}
	return s.UserByID(ctx, sess.UserID)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Delete(&Session{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
