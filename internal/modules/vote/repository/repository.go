package vote

import (
	"context"

	"anoa.com/nawhoknow/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, vote *entity.Vote) error
	FindByUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (*entity.Vote, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Vote, error)
	FindByPredictionID(ctx context.Context, predictionID uuid.UUID) ([]*entity.Vote, error)
	// CountByChoice recounts tallies straight from the votes table.
	CountByChoice(ctx context.Context, predictionID uuid.UUID) (yes int, no int, err error)
	// MapUserVotes returns predictionID -> choice for everything the user
	// ever voted on. The feed pipeline uses it for priority and annotation.
	MapUserVotes(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, vote *entity.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *repository) FindByUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (*entity.Vote, error) {
	var vote entity.Vote
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND prediction_id = ?", userID, predictionID).
		First(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Vote, error) {
	var votes []*entity.Vote
	if err := r.db.WithContext(ctx).
		Preload("Prediction").
		Preload("Prediction.Category").
		Where("user_id = ?", userID).
		Order("cast_at DESC").
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *repository) FindByPredictionID(ctx context.Context, predictionID uuid.UUID) ([]*entity.Vote, error) {
	var votes []*entity.Vote
	if err := r.db.WithContext(ctx).
		Where("prediction_id = ?", predictionID).
		Order("cast_at ASC").
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *repository) CountByChoice(ctx context.Context, predictionID uuid.UUID) (int, int, error) {
	type row struct {
		Choice string
		Count  int
	}
	var rows []row

	if err := r.db.WithContext(ctx).
		Model(&entity.Vote{}).
		Select("choice, COUNT(*) as count").
		Where("prediction_id = ?", predictionID).
		Group("choice").
		Scan(&rows).Error; err != nil {
		return 0, 0, err
	}

	var yes, no int
	for _, r := range rows {
		switch r.Choice {
		case entity.ChoiceYes:
			yes = r.Count
		case entity.ChoiceNo:
			no = r.Count
		}
	}
	return yes, no, nil
}

func (r *repository) MapUserVotes(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	type row struct {
		PredictionID uuid.UUID
		Choice       string
	}
	var rows []row

	if err := r.db.WithContext(ctx).
		Model(&entity.Vote{}).
		Select("prediction_id, choice").
		Where("user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	votes := make(map[uuid.UUID]string, len(rows))
	for _, r := range rows {
		votes[r.PredictionID] = r.Choice
	}
	return votes, nil
}
