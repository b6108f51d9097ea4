package prediction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	activity "anoa.com/nawhoknow/internal/modules/activity/service"
	categoryRepo "anoa.com/nawhoknow/internal/modules/category/repository"
	notification "anoa.com/nawhoknow/internal/modules/notification/service"
	predictionDto "anoa.com/nawhoknow/internal/modules/prediction/dto"
	repo "anoa.com/nawhoknow/internal/modules/prediction/repository"
	scoring "anoa.com/nawhoknow/internal/modules/scoring/service"
	search "anoa.com/nawhoknow/internal/modules/search/service"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	voteRepo "anoa.com/nawhoknow/internal/modules/vote/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	commonDto "anoa.com/nawhoknow/pkg/dto"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type Service interface {
	CreatePrediction(ctx context.Context, userID uuid.UUID, req predictionDto.CreatePredictionRequest) error
	GetFeed(ctx context.Context, userID uuid.UUID, adminView bool, filter commonDto.FeedFilter) (*commonDto.PaginatedPredictionResponse, error)
	GetPredictionByID(ctx context.Context, userID, id uuid.UUID) (*commonDto.PredictionResponse, error)
	GetMyPredictions(ctx context.Context, userID uuid.UUID) ([]commonDto.PredictionResponse, error)
	GetSpotlight(ctx context.Context, userID uuid.UUID) (*commonDto.PredictionResponse, error)
	Moderate(ctx context.Context, id uuid.UUID, req predictionDto.ModeratePredictionRequest) error
	Resolve(ctx context.Context, id uuid.UUID, req predictionDto.ResolvePredictionRequest) error
	DeletePrediction(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error
}

type service struct {
	predictionRepo  repo.Repository
	categoryRepo    categoryRepo.CategoryRepository
	userRepo        userRepo.UserRepository
	voteRepo        voteRepo.Repository
	scoringService  scoring.ScoringService
	activityService activity.ActivityService
	notifier        notification.NotificationService
	meili           search.MeiliSearchService
	sanitizer       *bluemonday.Policy
}

func NewService(
	predictionRepo repo.Repository,
	categoryRepo categoryRepo.CategoryRepository,
	userRepo userRepo.UserRepository,
	voteRepo voteRepo.Repository,
	scoringService scoring.ScoringService,
	activityService activity.ActivityService,
	notifier notification.NotificationService,
	meili search.MeiliSearchService,
) Service {
	return &service{
		predictionRepo:  predictionRepo,
		categoryRepo:    categoryRepo,
		userRepo:        userRepo,
		voteRepo:        voteRepo,
		scoringService:  scoringService,
		activityService: activityService,
		notifier:        notifier,
		meili:           meili,
		sanitizer:       bluemonday.StrictPolicy(),
	}
}

func (s *service) CreatePrediction(ctx context.Context, userID uuid.UUID, req predictionDto.CreatePredictionRequest) error {
	topic := s.sanitizer.Sanitize(req.Topic)
	if topic == "" {
		return apperror.ErrInvalidInput
	}

	category, err := s.categoryRepo.FindBySlug(ctx, req.Category)
	if err != nil {
		return fmt.Errorf("category not found: %w", apperror.ErrNotFound)
	}

	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil {
		return fmt.Errorf("invalid expires_at: %w", apperror.ErrInvalidInput)
	}
	if !expiresAt.After(time.Now()) {
		return fmt.Errorf("expires_at must be in the future: %w", apperror.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return err
	}

	prediction := &entity.Prediction{
		Topic:      topic,
		CategoryID: &category.ID,
		UserID:     userID,
		Status:     entity.StatusPending,
		ExpiresAt:  expiresAt,
	}

	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		return err
	}

	s.activityService.Record(ctx, user.Username, entity.ActivityCreatedPrediction, topic)

	return nil
}

func (s *service) GetFeed(ctx context.Context, userID uuid.UUID, adminView bool, filter commonDto.FeedFilter) (*commonDto.PaginatedPredictionResponse, error) {
	statuses := []string{entity.StatusApproved, entity.StatusResolved}
	if adminView {
		statuses = nil // admins see every status
	}

	predictions, err := s.predictionRepo.FindVisible(ctx, statuses, nil)
	if err != nil {
		return nil, err
	}

	userVotes := map[uuid.UUID]string{}
	if userID != uuid.Nil {
		userVotes, err = s.voteRepo.MapUserVotes(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	predictions = filterByTab(predictions, filter.Tab, adminView, now)
	predictions = filterByCategory(predictions, filter.Category)
	sortFeed(predictions, userVotes, filter.Sort, adminView)

	total := int64(len(predictions))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	window := paginate(predictions, page, limit)
	responses := make([]commonDto.PredictionResponse, 0, len(window))
	for _, p := range window {
		responses = append(responses, toResponse(p, userVotes, now))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &commonDto.PaginatedPredictionResponse{
		Data: responses,
		Meta: commonDto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (s *service) GetPredictionByID(ctx context.Context, userID, id uuid.UUID) (*commonDto.PredictionResponse, error) {
	prediction, err := s.predictionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	userVotes := map[uuid.UUID]string{}
	if userID != uuid.Nil {
		if vote, err := s.voteRepo.FindByUserAndPrediction(ctx, userID, id); err == nil {
			userVotes[id] = vote.Choice
		}
	}

	resp := toResponse(prediction, userVotes, time.Now())
	return &resp, nil
}

func (s *service) GetMyPredictions(ctx context.Context, userID uuid.UUID) ([]commonDto.PredictionResponse, error) {
	predictions, err := s.predictionRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]commonDto.PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		responses = append(responses, toResponse(p, nil, now))
	}
	return responses, nil
}

// GetSpotlight returns the hottest open prediction: top of the trending
// feed among approved, unexpired ones.
func (s *service) GetSpotlight(ctx context.Context, userID uuid.UUID) (*commonDto.PredictionResponse, error) {
	predictions, err := s.predictionRepo.FindVisible(ctx, []string{entity.StatusApproved}, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	open := make([]*entity.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if !p.IsExpired(now) {
			open = append(open, p)
		}
	}
	if len(open) == 0 {
		return nil, apperror.ErrNotFound
	}

	userVotes := map[uuid.UUID]string{}
	if userID != uuid.Nil {
		userVotes, err = s.voteRepo.MapUserVotes(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	sortFeed(open, userVotes, SortTrending, false)

	resp := toResponse(open[0], userVotes, now)
	return &resp, nil
}

func (s *service) Moderate(ctx context.Context, id uuid.UUID, req predictionDto.ModeratePredictionRequest) error {
	if req.Status == entity.StatusResolved {
		if req.Result == nil {
			return fmt.Errorf("result is required to resolve: %w", apperror.ErrInvalidInput)
		}
		return s.Resolve(ctx, id, predictionDto.ResolvePredictionRequest{Result: *req.Result})
	}

	prediction, err := s.predictionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if prediction.Status != entity.StatusPending {
		return fmt.Errorf("only pending predictions can be moderated: %w", apperror.ErrBadRequest)
	}

	prediction.Status = req.Status
	if err := s.predictionRepo.Update(ctx, prediction); err != nil {
		return err
	}

	if req.Status == entity.StatusApproved && s.meili != nil {
		if err := s.meili.IndexPrediction(prediction); err != nil {
			log.Printf("Failed to index prediction %s: %v", prediction.ID, err)
		}
	}

	verdict := "approved"
	if req.Status == entity.StatusRejected {
		verdict = "rejected"
	}

	notif := &entity.Notification{
		UserID:   prediction.UserID,
		EntityID: prediction.ID,
		Type:     entity.NotificationModeration,
		Message:  fmt.Sprintf("Your prediction %q was %s", prediction.Topic, verdict),
	}
	if err := s.notifier.CreateNotification(ctx, notif); err != nil {
		log.Printf("Failed to send moderation notification: %v", err)
	}

	return nil
}

func (s *service) Resolve(ctx context.Context, id uuid.UUID, req predictionDto.ResolvePredictionRequest) error {
	prediction, err := s.predictionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if prediction.Status != entity.StatusApproved {
		return fmt.Errorf("only approved predictions can be resolved: %w", apperror.ErrBadRequest)
	}

	now := time.Now()
	prediction.Status = entity.StatusResolved
	prediction.Result = &req.Result
	prediction.ResolvedAt = &now

	if err := s.predictionRepo.Update(ctx, prediction); err != nil {
		return err
	}

	if s.meili != nil {
		if err := s.meili.IndexPrediction(prediction); err != nil {
			log.Printf("Failed to reindex resolved prediction %s: %v", prediction.ID, err)
		}
	}

	return s.scoringService.SettlePrediction(ctx, prediction.ID)
}

func (s *service) DeletePrediction(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	prediction, err := s.predictionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if !isAdmin && prediction.UserID != userID {
		return apperror.ErrForbidden
	}

	if err := s.predictionRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.meili != nil {
		if err := s.meili.DeletePrediction(id.String()); err != nil {
			log.Printf("Failed to remove prediction %s from search index: %v", id, err)
		}
	}

	return nil
}

func toResponse(p *entity.Prediction, userVotes map[uuid.UUID]string, now time.Time) commonDto.PredictionResponse {
	resp := commonDto.PredictionResponse{
		ID:       p.ID,
		Topic:    p.Topic,
		Category: p.Category.Name,
		Author: commonDto.AuthorResponse{
			Username:  p.User.Username,
			AvatarURL: p.User.AvatarURL,
		},
		Status:    p.Status,
		Result:    p.Result,
		Upvotes:   p.Upvotes,
		Downvotes: p.Downvotes,
		TimeLeft:  timeLeftString(p, now),
		ExpiresAt: p.ExpiresAt,
		CreatedAt: p.CreatedAt,
	}

	if choice, ok := userVotes[p.ID]; ok {
		resp.UserVote = &choice
	}

	return resp
}
