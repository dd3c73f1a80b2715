package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Credits reads the current balance, always fresh from the database.
func (s *Store) Credits(ctx context.Context, userID int64) (int64, error) {
	var user User
	err := s.db.WithContext(ctx).Select("id", "credits").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query credits: %w", err)
	}
	return user.Credits, nil
}

// Debit removes amount from the balance only if the result stays >= 0.
// The check and the decrement are one conditional UPDATE, so concurrent
// spends cannot drive the balance negative.
func (s *Store) Debit(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must not be negative")
	}
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND credits >= ?", userID, amount).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("debit credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("debit credits: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientCredits
	}
	return nil
}

// Credit adds amount to the balance. Used for purchase grants and for the
// compensating refund after a failed generation.
func (s *Store) Credit(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative")
	}
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("credit credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClawBack removes amount unconditionally. Used when a provisional grant is
// rejected; the balance may legitimately go negative if the user already
// spent the granted credits, which is surfaced for admin follow-up.
func (s *Store) ClawBack(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("claw-back amount must not be negative")
	}
	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("claw back credits: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	var balance int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).
		Pluck("credits", &balance).Error; err == nil && balance < 0 {
		s.log.Warn("claw-back left balance negative",
			zap.Int64("user_id", userID),
			zap.Int64("balance", balance),
			zap.Int64("amount", amount))
	}
	return nil
}
