package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	notification "anoa.com/nawhoknow/internal/modules/notification/service"
	predictionRepo "anoa.com/nawhoknow/internal/modules/prediction/repository"
	"anoa.com/nawhoknow/internal/modules/scoring/repository"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	voteRepo "anoa.com/nawhoknow/internal/modules/vote/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	"github.com/google/uuid"
)

const (
	PointsForCorrect   = 10
	PointsForIncorrect = -2
)

type ScoringService interface {
	// SettlePrediction scores every vote on a resolved prediction exactly
	// once. Safe to call repeatedly; already-settled votes are skipped.
	SettlePrediction(ctx context.Context, predictionID uuid.UUID) error
	// RescanResolved re-settles predictions resolved within the window,
	// catching votes a crashed settlement run left behind.
	RescanResolved(ctx context.Context, window time.Duration) error
}

type scoringService struct {
	pointsRepo     repository.PointsRepository
	voteRepo       voteRepo.Repository
	userRepo       userRepo.UserRepository
	predictionRepo predictionRepo.Repository
	notifier       notification.NotificationService
	loc            *time.Location
}

func NewScoringService(
	pointsRepo repository.PointsRepository,
	voteRepo voteRepo.Repository,
	userRepo userRepo.UserRepository,
	predictionRepo predictionRepo.Repository,
	notifier notification.NotificationService,
	loc *time.Location,
) ScoringService {
	if loc == nil {
		loc = time.Local
	}

	return &scoringService{
		pointsRepo:     pointsRepo,
		voteRepo:       voteRepo,
		userRepo:       userRepo,
		predictionRepo: predictionRepo,
		notifier:       notifier,
		loc:            loc,
	}
}

// scoreVote maps a (choice, result) pair to a points delta. A Maybe result
// means reality matched neither side, so every voter scores as incorrect.
func scoreVote(choice, result string) (int, bool) {
	if choice == result {
		return PointsForCorrect, true
	}
	return PointsForIncorrect, false
}

func (s *scoringService) SettlePrediction(ctx context.Context, predictionID uuid.UUID) error {
	prediction, err := s.predictionRepo.FindByID(ctx, predictionID)
	if err != nil {
		return fmt.Errorf("settle: load prediction: %w", err)
	}

	if !prediction.IsResolved() {
		return apperror.ErrPredictionClosed
	}

	votes, err := s.voteRepo.FindByPredictionID(ctx, prediction.ID)
	if err != nil {
		return fmt.Errorf("settle: load votes: %w", err)
	}

	resolvedAt := time.Now()
	if prediction.ResolvedAt != nil {
		resolvedAt = *prediction.ResolvedAt
	}

	for _, vote := range votes {
		if err := s.settleVote(ctx, prediction, vote, resolvedAt); err != nil {
			// One bad vote must not block the rest; the rescan job will
			// retry it.
			log.Printf("Failed to settle vote %s on prediction %s: %v", vote.ID, prediction.ID, err)
		}
	}

	return nil
}

func (s *scoringService) settleVote(ctx context.Context, prediction *entity.Prediction, vote *entity.Vote, resolvedAt time.Time) error {
	settled, err := s.pointsRepo.ExistsForUserAndPrediction(ctx, vote.UserID, prediction.ID)
	if err != nil {
		return err
	}
	if settled {
		return nil
	}

	points, correct := scoreVote(vote.Choice, *prediction.Result)

	entry := &entity.PointsHistory{
		UserID:       vote.UserID,
		PredictionID: prediction.ID,
		Topic:        prediction.Topic,
		Category:     prediction.Category.Name,
		Choice:       vote.Choice,
		Result:       *prediction.Result,
		Points:       points,
		ResolvedAt:   resolvedAt,
	}

	if err := s.pointsRepo.Create(ctx, entry); err != nil {
		return err
	}

	if err := s.userRepo.AddPoints(ctx, vote.UserID.String(), points); err != nil {
		return err
	}

	s.notifySettled(ctx, prediction, vote, points, correct)
	s.checkStreakMilestone(ctx, prediction, vote.UserID.String())

	return nil
}

func (s *scoringService) notifySettled(ctx context.Context, prediction *entity.Prediction, vote *entity.Vote, points int, correct bool) {
	outcome := "incorrect"
	if correct {
		outcome = "correct"
	}

	notif := &entity.Notification{
		UserID:   vote.UserID,
		EntityID: prediction.ID,
		Type:     entity.NotificationSettled,
		Message:  fmt.Sprintf("Your %s vote on %q was %s (%+d points)", vote.Choice, prediction.Topic, outcome, points),
	}

	if err := s.notifier.CreateNotification(ctx, notif); err != nil {
		log.Printf("Failed to notify user %s about settlement: %v", vote.UserID, err)
	}
}

func (s *scoringService) checkStreakMilestone(ctx context.Context, prediction *entity.Prediction, userID string) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Printf("Failed to load user %s for streak check: %v", userID, err)
		return
	}

	entries, err := s.pointsRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		log.Printf("Failed to load history for streak check (%s): %v", userID, err)
		return
	}

	streak := CalculateStreak(entries, s.loc)
	milestone := NextMilestone(streak, user.LastStreakMilestone)
	if milestone == 0 {
		return
	}

	notif := &entity.Notification{
		UserID:   user.ID,
		EntityID: prediction.ID,
		Type:     entity.NotificationStreakMilestone,
		Message:  fmt.Sprintf("🔥 You're on a %d-day streak!", milestone),
	}
	if err := s.notifier.CreateNotification(ctx, notif); err != nil {
		log.Printf("Failed to send streak notification to %s: %v", userID, err)
	}

	user.LastStreakMilestone = milestone
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Printf("Failed to record streak milestone for %s: %v", userID, err)
	}
}

func (s *scoringService) RescanResolved(ctx context.Context, window time.Duration) error {
	since := time.Now().Add(-window)

	predictions, err := s.predictionRepo.FindResolvedAfter(ctx, since)
	if err != nil {
		return fmt.Errorf("rescan: %w", err)
	}

	for _, p := range predictions {
		if err := s.SettlePrediction(ctx, p.ID); err != nil {
			log.Printf("Rescan failed for prediction %s: %v", p.ID, err)
		}
	}

	return nil
}
