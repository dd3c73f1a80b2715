package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateArtifact(ctx context.Context, artifact *Artifact) error {
	if artifact.ID == "" {
		artifact.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	return nil
}

func (s *Store) GetArtifact(ctx context.Context, id string) (*Artifact, error) {
	var artifact Artifact
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&artifact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query artifact: %w", err)
	}
	return &artifact, nil
}

func (s *Store) ListArtifacts(ctx context.Context, userID int64) ([]Artifact, error) {
	var artifacts []Artifact
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&artifacts).Error
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// ListPublicArtifacts is the public feed: artifacts whose owner toggled
// visibility on, newest first.
func (s *Store) ListPublicArtifacts(ctx context.Context, limit int) ([]Artifact, error) {
	if limit <= 0 {
		limit = 100
	}
	var artifacts []Artifact
	err := s.db.WithContext(ctx).Where("public = ?", true).
		Order("created_at DESC").Limit(limit).Find(&artifacts).Error
	if err != nil {
		return nil, fmt.Errorf("list public artifacts: %w", err)
	}
	return artifacts, nil
}

// SetArtifactVisibility flips the public flag. Only the owner may do it.
func (s *Store) SetArtifactVisibility(ctx context.Context, id string, userID int64, public bool) (*Artifact, error) {
	res := s.db.WithContext(ctx).Model(&Artifact{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("public", public)
	if res.Error != nil {
		return nil, fmt.Errorf("set artifact visibility: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetArtifact(ctx, id)
}
