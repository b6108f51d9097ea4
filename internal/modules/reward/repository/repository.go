package repository

import (
	"context"

	"anoa.com/nawhoknow/internal/entity"
	"anoa.com/nawhoknow/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardRepository interface {
	Create(ctx context.Context, reward *entity.Reward) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error)
	FindActive(ctx context.Context) ([]*entity.Reward, error)
	Update(ctx context.Context, reward *entity.Reward) error
	// Redeem runs the whole redemption in one transaction: decrement
	// stock, deduct points and write the redemption row. Stock and points
	// are re-checked inside the transaction so concurrent redemptions
	// cannot oversell.
	Redeem(ctx context.Context, userID uuid.UUID, rewardID uuid.UUID, code string) (*entity.Redemption, error)
	FindRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Redemption, error)
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Create(ctx context.Context, reward *entity.Reward) error {
	return r.db.WithContext(ctx).Create(reward).Error
}

func (r *rewardRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reward, error) {
	var reward entity.Reward
	if err := r.db.WithContext(ctx).First(&reward, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *rewardRepository) FindActive(ctx context.Context) ([]*entity.Reward, error) {
	var rewards []*entity.Reward
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("points_cost ASC").
		Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *rewardRepository) Update(ctx context.Context, reward *entity.Reward) error {
	return r.db.WithContext(ctx).Save(reward).Error
}

func (r *rewardRepository) Redeem(ctx context.Context, userID uuid.UUID, rewardID uuid.UUID, code string) (*entity.Redemption, error) {
	var redemption *entity.Redemption

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reward entity.Reward
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reward, "id = ?", rewardID).Error; err != nil {
			return err
		}

		var user entity.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		if !reward.Active || reward.Stock <= 0 {
			return apperror.ErrOutOfStock
		}
		if user.Points < reward.PointsCost {
			return apperror.ErrInsufficientPoints
		}

		if err := tx.Model(&entity.Reward{}).
			Where("id = ? AND stock > 0", rewardID).
			UpdateColumn("stock", gorm.Expr("stock - 1")).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.User{}).
			Where("id = ?", userID).
			UpdateColumn("points", gorm.Expr("points - ?", reward.PointsCost)).Error; err != nil {
			return err
		}

		redemption = &entity.Redemption{
			UserID:      userID,
			RewardID:    rewardID,
			PointsSpent: reward.PointsCost,
			Code:        code,
		}
		return tx.Create(redemption).Error
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}

func (r *rewardRepository) FindRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Redemption, error) {
	var redemptions []entity.Redemption
	if err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}
