package reward

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"anoa.com/nawhoknow/internal/entity"
	activity "anoa.com/nawhoknow/internal/modules/activity/service"
	notification "anoa.com/nawhoknow/internal/modules/notification/service"
	rewardDto "anoa.com/nawhoknow/internal/modules/reward/dto"
	"anoa.com/nawhoknow/internal/modules/reward/repository"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardService interface {
	CreateReward(ctx context.Context, req rewardDto.CreateRewardRequest) error
	GetCatalog(ctx context.Context) ([]*entity.Reward, error)
	Redeem(ctx context.Context, userID, rewardID uuid.UUID) (*rewardDto.RedemptionResponse, error)
	GetMyRedemptions(ctx context.Context, userID uuid.UUID) ([]rewardDto.RedemptionResponse, error)
}

type rewardService struct {
	repo            repository.RewardRepository
	userRepo        userRepo.UserRepository
	activityService activity.ActivityService
	notifier        notification.NotificationService
}

func NewRewardService(
	repo repository.RewardRepository,
	userRepo userRepo.UserRepository,
	activityService activity.ActivityService,
	notifier notification.NotificationService,
) RewardService {
	return &rewardService{
		repo:            repo,
		userRepo:        userRepo,
		activityService: activityService,
		notifier:        notifier,
	}
}

func (s *rewardService) CreateReward(ctx context.Context, req rewardDto.CreateRewardRequest) error {
	reward := &entity.Reward{
		Name:        req.Name,
		Description: req.Description,
		PointsCost:  req.PointsCost,
		RewardType:  req.RewardType,
		Stock:       req.Stock,
		Active:      true,
	}
	return s.repo.Create(ctx, reward)
}

func (s *rewardService) GetCatalog(ctx context.Context) ([]*entity.Reward, error) {
	return s.repo.FindActive(ctx)
}

func (s *rewardService) Redeem(ctx context.Context, userID, rewardID uuid.UUID) (*rewardDto.RedemptionResponse, error) {
	reward, err := s.repo.FindByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	code := redemptionCode(reward.RewardType)

	redemption, err := s.repo.Redeem(ctx, userID, rewardID, code)
	if err != nil {
		return nil, err
	}

	if user, err := s.userRepo.FindByID(ctx, userID.String()); err == nil {
		s.activityService.Record(ctx, user.Username, entity.ActivityRedeemedReward, reward.Name)
	}

	notif := &entity.Notification{
		UserID:   userID,
		EntityID: reward.ID,
		Type:     entity.NotificationRedemption,
		Message:  fmt.Sprintf("You redeemed %s for %d points. Code: %s", reward.Name, reward.PointsCost, code),
	}
	if err := s.notifier.CreateNotification(ctx, notif); err != nil {
		log.Printf("Failed to send redemption notification: %v", err)
	}

	return &rewardDto.RedemptionResponse{
		ID:          redemption.ID,
		RewardName:  reward.Name,
		PointsSpent: redemption.PointsSpent,
		Code:        redemption.Code,
		RedeemedAt:  redemption.CreatedAt,
	}, nil
}

func (s *rewardService) GetMyRedemptions(ctx context.Context, userID uuid.UUID) ([]rewardDto.RedemptionResponse, error) {
	redemptions, err := s.repo.FindRedemptionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]rewardDto.RedemptionResponse, 0, len(redemptions))
	for _, r := range redemptions {
		responses = append(responses, rewardDto.RedemptionResponse{
			ID:          r.ID,
			RewardName:  r.Reward.Name,
			PointsSpent: r.PointsSpent,
			Code:        r.Code,
			RedeemedAt:  r.CreatedAt,
		})
	}
	return responses, nil
}

// redemptionCode builds a human-readable voucher code like AIR-1A2B3C4D.
func redemptionCode(rewardType string) string {
	prefix := strings.ToUpper(rewardType)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return prefix + "-" + suffix
}
