package repository

import (
	"context"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Row is one projected leaderboard line, already joined with the user.
type Row struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Points    int       `json:"points"`
}

type LeaderboardRepository interface {
	// AllTime ranks every user by their authoritative points column.
	AllTime(ctx context.Context) ([]Row, error)
	// Since ranks users by points settled within a window, optionally
	// narrowed to a category. Users with no settlements do not appear.
	Since(ctx context.Context, since time.Time, category string) ([]Row, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) AllTime(ctx context.Context) ([]Row, error) {
	var rows []Row
	if err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Select("id as user_id, username, avatar_url, points").
		Order("points DESC, username ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *leaderboardRepository) Since(ctx context.Context, since time.Time, category string) ([]Row, error) {
	var rows []Row

	query := r.db.WithContext(ctx).
		Model(&entity.PointsHistory{}).
		Select("points_histories.user_id as user_id, users.username, users.avatar_url, COALESCE(SUM(points_histories.points), 0) as points").
		Joins("JOIN users ON users.id = points_histories.user_id").
		Where("points_histories.resolved_at >= ?", since).
		Group("points_histories.user_id, users.username, users.avatar_url").
		Order("points DESC, users.username ASC")

	if category != "" {
		query = query.Where("points_histories.category = ?", category)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
