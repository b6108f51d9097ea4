package repository

import (
	"context"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPoints is an aggregation row for leaderboard projections.
type UserPoints struct {
	UserID uuid.UUID
	Points int
}

type PointsRepository interface {
	Create(ctx context.Context, entry *entity.PointsHistory) error
	// ExistsForUserAndPrediction backs the settlement dedup check. The
	// unique index catches races the check misses.
	ExistsForUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PointsHistory, error)
	SumByUserID(ctx context.Context, userID uuid.UUID) (int, error)
	// AggregateByUser sums settled points per user, optionally windowed by
	// time and narrowed to one category.
	AggregateByUser(ctx context.Context, since *time.Time, category string) ([]UserPoints, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) Create(ctx context.Context, entry *entity.PointsHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *pointsRepository) ExistsForUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entity.PointsHistory{}).
		Where("user_id = ? AND prediction_id = ?", userID, predictionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *pointsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PointsHistory, error) {
	var entries []entity.PointsHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("resolved_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pointsRepository) SumByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	if err := r.db.WithContext(ctx).
		Model(&entity.PointsHistory{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *pointsRepository) AggregateByUser(ctx context.Context, since *time.Time, category string) ([]UserPoints, error) {
	var rows []UserPoints

	query := r.db.WithContext(ctx).
		Model(&entity.PointsHistory{}).
		Select("user_id, COALESCE(SUM(points), 0) as points").
		Group("user_id").
		Order("points DESC")

	if since != nil {
		query = query.Where("resolved_at >= ?", *since)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
