package vote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	activity "anoa.com/nawhoknow/internal/modules/activity/service"
	notification "anoa.com/nawhoknow/internal/modules/notification/service"
	predictionRepo "anoa.com/nawhoknow/internal/modules/prediction/repository"
	scoringRepo "anoa.com/nawhoknow/internal/modules/scoring/repository"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	voteDto "anoa.com/nawhoknow/internal/modules/vote/dto"
	repo "anoa.com/nawhoknow/internal/modules/vote/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	commonDto "anoa.com/nawhoknow/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const tallyCacheTTL = 15 * time.Second

type Service interface {
	CastVote(ctx context.Context, userID, predictionID uuid.UUID, req voteDto.CastVoteRequest) (*commonDto.VoteTallies, error)
	GetTallies(ctx context.Context, predictionID uuid.UUID) (*commonDto.VoteTallies, error)
	GetUserVotes(ctx context.Context, userID uuid.UUID) ([]voteDto.UserVoteResponse, error)
}

type service struct {
	voteRepo        repo.Repository
	predictionRepo  predictionRepo.Repository
	userRepo        userRepo.UserRepository
	pointsRepo      scoringRepo.PointsRepository
	activityService activity.ActivityService
	notifier        notification.NotificationService
	redisClient     *redis.Client
}

func NewService(
	voteRepo repo.Repository,
	predictionRepo predictionRepo.Repository,
	userRepo userRepo.UserRepository,
	pointsRepo scoringRepo.PointsRepository,
	activityService activity.ActivityService,
	notifier notification.NotificationService,
	redisClient *redis.Client,
) Service {
	return &service{
		voteRepo:        voteRepo,
		predictionRepo:  predictionRepo,
		userRepo:        userRepo,
		pointsRepo:      pointsRepo,
		activityService: activityService,
		notifier:        notifier,
		redisClient:     redisClient,
	}
}

func (s *service) CastVote(ctx context.Context, userID, predictionID uuid.UUID, req voteDto.CastVoteRequest) (*commonDto.VoteTallies, error) {
	prediction, err := s.predictionRepo.FindByID(ctx, predictionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	// Preconditions run before any write. Order matters only for the error
	// the caller sees; none of them mutate state.
	if prediction.Status != entity.StatusApproved {
		return nil, apperror.ErrPredictionClosed
	}
	if prediction.IsExpired(time.Now()) {
		return nil, apperror.ErrPredictionExpired
	}
	if _, err := s.voteRepo.FindByUserAndPrediction(ctx, userID, predictionID); err == nil {
		return nil, apperror.ErrAlreadyVoted
	}

	vote := &entity.Vote{
		UserID:       userID,
		PredictionID: predictionID,
		Choice:       req.Choice,
	}

	if err := s.voteRepo.Create(ctx, vote); err != nil {
		return nil, err
	}

	tallies, err := s.refreshTallies(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if user, err := s.userRepo.FindByID(ctx, userID.String()); err == nil {
		s.activityService.Record(ctx, user.Username, entity.ActivityVoted, prediction.Topic)

		if prediction.UserID != userID {
			notif := &entity.Notification{
				UserID:   prediction.UserID,
				EntityID: prediction.ID,
				Type:     entity.NotificationVoteCast,
				Message:  fmt.Sprintf("%s voted %s on your prediction %q", user.Username, req.Choice, prediction.Topic),
			}
			if err := s.notifier.CreateNotification(ctx, notif); err != nil {
				log.Printf("Failed to notify prediction owner about vote: %v", err)
			}
		}
	}

	return tallies, nil
}

// refreshTallies recounts from the votes table, writes the denormalized
// counters back and refreshes the cache. The recount keeps tallies correct
// even if a previous write raced.
func (s *service) refreshTallies(ctx context.Context, predictionID uuid.UUID) (*commonDto.VoteTallies, error) {
	yes, no, err := s.voteRepo.CountByChoice(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	if err := s.predictionRepo.UpdateTallies(ctx, predictionID, yes, no); err != nil {
		return nil, err
	}

	tallies := &commonDto.VoteTallies{Yes: yes, No: no}
	s.cacheTallies(ctx, predictionID, tallies)
	return tallies, nil
}

func (s *service) GetTallies(ctx context.Context, predictionID uuid.UUID) (*commonDto.VoteTallies, error) {
	if cached := s.cachedTallies(ctx, predictionID); cached != nil {
		return cached, nil
	}

	yes, no, err := s.voteRepo.CountByChoice(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	tallies := &commonDto.VoteTallies{Yes: yes, No: no}
	s.cacheTallies(ctx, predictionID, tallies)
	return tallies, nil
}

func (s *service) GetUserVotes(ctx context.Context, userID uuid.UUID) ([]voteDto.UserVoteResponse, error) {
	votes, err := s.voteRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.pointsRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	settled := make(map[uuid.UUID]entity.PointsHistory, len(entries))
	for _, e := range entries {
		settled[e.PredictionID] = e
	}

	responses := make([]voteDto.UserVoteResponse, 0, len(votes))
	for _, v := range votes {
		resp := voteDto.UserVoteResponse{
			PredictionID: v.PredictionID,
			Topic:        v.Prediction.Topic,
			Category:     v.Prediction.Category.Name,
			Choice:       v.Choice,
			Status:       v.Prediction.Status,
			Result:       v.Prediction.Result,
			CastAt:       v.CastAt,
		}

		if entry, ok := settled[v.PredictionID]; ok {
			correct := entry.Points > 0
			points := entry.Points
			resp.IsCorrect = &correct
			resp.Points = &points
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

func tallyKey(predictionID uuid.UUID) string {
	return fmt.Sprintf("prediction_tallies:%s", predictionID)
}

func (s *service) cachedTallies(ctx context.Context, predictionID uuid.UUID) *commonDto.VoteTallies {
	if s.redisClient == nil {
		return nil
	}

	raw, err := s.redisClient.Get(ctx, tallyKey(predictionID)).Result()
	if err != nil {
		return nil
	}

	var tallies commonDto.VoteTallies
	if err := json.Unmarshal([]byte(raw), &tallies); err != nil {
		return nil
	}
	return &tallies
}

func (s *service) cacheTallies(ctx context.Context, predictionID uuid.UUID, tallies *commonDto.VoteTallies) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(tallies)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, tallyKey(predictionID), payload, tallyCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache tallies for %s: %v", predictionID, err)
	}
}
