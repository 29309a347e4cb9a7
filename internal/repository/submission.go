// Package repository provides data access interfaces and gorm implementations.
package repository

import (
	"context"

	"forgeline/internal/models"

	"gorm.io/gorm"
)

// SubmissionRepository defines the interface for submission data operations
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByConfirmationID(ctx context.Context, confirmationID string) (*models.Submission, error)
	List(ctx context.Context, kind string, limit, offset int) ([]*models.Submission, error)
	Count(ctx context.Context, kind string) (int64, error)
}

// submissionRepository implements SubmissionRepository
type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByConfirmationID(ctx context.Context, confirmationID string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("confirmation_id = ?", confirmationID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) List(ctx context.Context, kind string, limit, offset int) ([]*models.Submission, error) {
	var submissions []*models.Submission
	q := r.db.WithContext(ctx).
		Preload("Attachments").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) Count(ctx context.Context, kind string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Submission{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	err := q.Count(&count).Error
	return count, err
}
