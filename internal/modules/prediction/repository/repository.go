package prediction

import (
	"context"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Prediction, error)
	// FindVisible returns every non-deleted prediction matching the given
	// statuses and optional category. Ordering and pagination are the
	// feed pipeline's job, not the database's.
	FindVisible(ctx context.Context, statuses []string, categoryID *uuid.UUID) ([]*entity.Prediction, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Prediction, error)
	FindExpiredUnresolved(ctx context.Context, now time.Time) ([]*entity.Prediction, error)
	FindResolvedAfter(ctx context.Context, since time.Time) ([]*entity.Prediction, error)
	Update(ctx context.Context, prediction *entity.Prediction) error
	UpdateTallies(ctx context.Context, id uuid.UUID, upvotes, downvotes int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, prediction *entity.Prediction) error {
	return r.db.WithContext(ctx).Create(prediction).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Prediction, error) {
	var prediction entity.Prediction
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Where("id = ?", id).
		First(&prediction).Error; err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (r *repository) FindVisible(ctx context.Context, statuses []string, categoryID *uuid.UUID) ([]*entity.Prediction, error) {
	var predictions []*entity.Prediction

	query := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User")

	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", categoryID)
	}

	if err := query.Order("created_at DESC").Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Prediction, error) {
	var predictions []*entity.Prediction
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *repository) FindExpiredUnresolved(ctx context.Context, now time.Time) ([]*entity.Prediction, error) {
	var predictions []*entity.Prediction
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Where("status = ? AND expires_at <= ?", entity.StatusApproved, now).
		Order("expires_at ASC").
		Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *repository) FindResolvedAfter(ctx context.Context, since time.Time) ([]*entity.Prediction, error) {
	var predictions []*entity.Prediction
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("status = ? AND resolved_at > ?", entity.StatusResolved, since).
		Order("resolved_at ASC").
		Find(&predictions).Error; err != nil {
		return nil, err
	}
	return predictions, nil
}

func (r *repository) Update(ctx context.Context, prediction *entity.Prediction) error {
	return r.db.WithContext(ctx).Save(prediction).Error
}

// UpdateTallies writes denormalized counters recomputed from the votes
// table. The votes table stays authoritative.
func (r *repository) UpdateTallies(ctx context.Context, id uuid.UUID, upvotes, downvotes int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Prediction{}).
		Where("id = ?", id).
		Updates(map[string]any{"upvotes": upvotes, "downvotes": downvotes}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Prediction{}, "id = ?", id).Error
}
