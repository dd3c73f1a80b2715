package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreatePurchase(ctx context.Context, rec *PurchaseRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func (s *Store) GetPurchase(ctx context.Context, id string) (*PurchaseRecord, error) {
	var rec PurchaseRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query purchase: %w", err)
	}
	return &rec, nil
}

func (s *Store) SavePurchase(ctx context.Context, rec *PurchaseRecord) error {
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("save purchase: %w", err)
	}
	return nil
}

// ListPurchases is the user-facing purchase history, newest first.
func (s *Store) ListPurchases(ctx context.Context, userID int64) ([]PurchaseRecord, error) {
	var recs []PurchaseRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return recs, nil
}

// ListAllPurchases is the admin review queue. Empty status lists everything.
func (s *Store) ListAllPurchases(ctx context.Context, status PurchaseStatus) ([]PurchaseRecord, error) {
	q := s.db.WithContext(ctx).Model(&PurchaseRecord{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var recs []PurchaseRecord
	if err := q.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list all purchases: %w", err)
	}
	return recs, nil
}
