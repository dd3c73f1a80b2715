package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]Notification, error) {
	var list []Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flips the read flag. Re-marking a read notification
// is a no-op in effect.
func (s *Store) MarkNotificationRead(ctx context.Context, id string, userID int64) error {
	res := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Notification{}).
			Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return fmt.Errorf("mark notification read: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *Store) CreateAdminNotification(ctx context.Context, n *AdminNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.ReadBy == "" {
		n.ReadBy = "{}"
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create admin notification: %w", err)
	}
	return nil
}

func (s *Store) GetAdminNotification(ctx context.Context, id string) (*AdminNotification, error) {
	var n AdminNotification
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query admin notification: %w", err)
	}
	return &n, nil
}

// AdminNotificationByPurchase finds the broadcast entry created for a
// purchase request, if any.
func (s *Store) AdminNotificationByPurchase(ctx context.Context, purchaseID string) (*AdminNotification, error) {
	var n AdminNotification
	err := s.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query admin notification by purchase: %w", err)
	}
	return &n, nil
}

func (s *Store) ListAdminNotifications(ctx context.Context) ([]AdminNotification, error) {
	var list []AdminNotification
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list admin notifications: %w", err)
	}
	return list, nil
}

// MarkAdminNotificationRead records read state for one admin without
// touching the other admins' flags. Idempotent: re-marking skips the write.
func (s *Store) MarkAdminNotificationRead(ctx context.Context, id string, adminID int64) error {
	return s.Transaction(ctx, func(tx *Store) error {
		n, err := tx.GetAdminNotification(ctx, id)
		if err != nil {
			return err
		}
		readBy := n.ReadByMap()
		if readBy[adminID] {
			return nil
		}
		readBy[adminID] = true
		n.SetReadBy(readBy)
		if err := tx.db.Model(&AdminNotification{}).Where("id = ?", id).
			Update("read_by", n.ReadBy).Error; err != nil {
			return fmt.Errorf("mark admin notification read: %w", err)
		}
		return nil
	})
}
