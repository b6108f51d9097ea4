package service

import (
	"context"
	"log"

	"anoa.com/nawhoknow/internal/entity"
	"anoa.com/nawhoknow/internal/modules/activity/repository"
)

type ActivityService interface {
	// Record never returns an error; the activity feed is decoration and
	// must not fail the operation that triggered it.
	Record(ctx context.Context, username, action, target string)
	GetRecent(ctx context.Context, limit int) ([]entity.Activity, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, username, action, target string) {
	activity := &entity.Activity{
		Username: username,
		Action:   action,
		Target:   target,
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		log.Printf("Failed to record activity (%s %s): %v", username, action, err)
	}
}

func (s *activityService) GetRecent(ctx context.Context, limit int) ([]entity.Activity, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.FindRecent(ctx, limit)
}
