package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	"anoa.com/nawhoknow/internal/modules/scoring/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type fakePointsRepo struct {
	entries []entity.PointsHistory
}

func (f *fakePointsRepo) Create(ctx context.Context, entry *entity.PointsHistory) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakePointsRepo) ExistsForUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (bool, error) {
	for _, e := range f.entries {
		if e.UserID == userID && e.PredictionID == predictionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePointsRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PointsHistory, error) {
	var out []entity.PointsHistory
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakePointsRepo) SumByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range f.entries {
		if e.UserID == userID {
			sum += e.Points
		}
	}
	return sum, nil
}

func (f *fakePointsRepo) AggregateByUser(ctx context.Context, since *time.Time, category string) ([]repository.UserPoints, error) {
	return nil, nil
}

type fakeVoteRepo struct {
	votes []*entity.Vote
}

func (f *fakeVoteRepo) Create(ctx context.Context, vote *entity.Vote) error {
	f.votes = append(f.votes, vote)
	return nil
}

func (f *fakeVoteRepo) FindByUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (*entity.Vote, error) {
	for _, v := range f.votes {
		if v.UserID == userID && v.PredictionID == predictionID {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVoteRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Vote, error) {
	return nil, nil
}

func (f *fakeVoteRepo) FindByPredictionID(ctx context.Context, predictionID uuid.UUID) ([]*entity.Vote, error) {
	var out []*entity.Vote
	for _, v := range f.votes {
		if v.PredictionID == predictionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVoteRepo) CountByChoice(ctx context.Context, predictionID uuid.UUID) (int, int, error) {
	yes, no := 0, 0
	for _, v := range f.votes {
		if v.PredictionID != predictionID {
			continue
		}
		if v.Choice == entity.ChoiceYes {
			yes++
		} else {
			no++
		}
	}
	return yes, no, nil
}

func (f *fakeVoteRepo) MapUserVotes(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, v := range f.votes {
		if v.UserID == userID {
			out[v.PredictionID] = v.Choice
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users  map[string]*entity.User
	deltas map[string]int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]*entity.User{}, deltas: map[string]int{}}
	for _, u := range users {
		f.users[u.ID.String()] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.users[user.ID.String()] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return &entity.Role{ID: 1, Name: name}, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.users[user.ID.String()] = user
	return nil
}

func (f *fakeUserRepo) FindAll(ctx context.Context) ([]*entity.User, error) { return nil, nil }
func (f *fakeUserRepo) Delete(ctx context.Context, id string) error         { return nil }
func (f *fakeUserRepo) Count(ctx context.Context) (int64, error)            { return 0, nil }

func (f *fakeUserRepo) AddPoints(ctx context.Context, userID string, delta int) error {
	f.deltas[userID] += delta
	if u, ok := f.users[userID]; ok {
		u.Points += delta
	}
	return nil
}

type fakePredictionRepo struct {
	predictions map[uuid.UUID]*entity.Prediction
}

func newFakePredictionRepo(predictions ...*entity.Prediction) *fakePredictionRepo {
	f := &fakePredictionRepo{predictions: map[uuid.UUID]*entity.Prediction{}}
	for _, p := range predictions {
		f.predictions[p.ID] = p
	}
	return f
}

func (f *fakePredictionRepo) Create(ctx context.Context, p *entity.Prediction) error {
	f.predictions[p.ID] = p
	return nil
}

func (f *fakePredictionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Prediction, error) {
	if p, ok := f.predictions[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePredictionRepo) FindVisible(ctx context.Context, statuses []string, categoryID *uuid.UUID) ([]*entity.Prediction, error) {
	return nil, nil
}

func (f *fakePredictionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Prediction, error) {
	return nil, nil
}

func (f *fakePredictionRepo) FindExpiredUnresolved(ctx context.Context, now time.Time) ([]*entity.Prediction, error) {
	return nil, nil
}

func (f *fakePredictionRepo) FindResolvedAfter(ctx context.Context, since time.Time) ([]*entity.Prediction, error) {
	var out []*entity.Prediction
	for _, p := range f.predictions {
		if p.ResolvedAt != nil && p.ResolvedAt.After(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePredictionRepo) Update(ctx context.Context, p *entity.Prediction) error {
	f.predictions[p.ID] = p
	return nil
}

func (f *fakePredictionRepo) UpdateTallies(ctx context.Context, id uuid.UUID, upvotes, downvotes int) error {
	if p, ok := f.predictions[id]; ok {
		p.Upvotes, p.Downvotes = upvotes, downvotes
	}
	return nil
}

func (f *fakePredictionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.predictions, id)
	return nil
}

type fakeNotifier struct {
	sent []entity.Notification
}

func (f *fakeNotifier) CreateNotification(ctx context.Context, n *entity.Notification) error {
	f.sent = append(f.sent, *n)
	return nil
}

func (f *fakeNotifier) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkAsRead(ctx context.Context, id uuid.UUID) error               { return nil }
func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error        { return nil }
func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) { return 0, nil }
func (f *fakeNotifier) Subscribe(ctx context.Context, userID uuid.UUID) *redis.PubSub    { return nil }

func (f *fakeNotifier) byType(notifType string) []entity.Notification {
	var out []entity.Notification
	for _, n := range f.sent {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func resolvedPrediction(result string) *entity.Prediction {
	now := time.Now()
	return &entity.Prediction{
		ID:         uuid.New(),
		Topic:      "Will it rain tomorrow?",
		Category:   entity.Category{Name: "Weather"},
		Status:     entity.StatusResolved,
		Result:     &result,
		ExpiresAt:  now.Add(-time.Hour),
		ResolvedAt: &now,
	}
}

type settlementFixture struct {
	points      *fakePointsRepo
	votes       *fakeVoteRepo
	users       *fakeUserRepo
	predictions *fakePredictionRepo
	notifier    *fakeNotifier
	svc         ScoringService
}

func newSettlementFixture(prediction *entity.Prediction, users ...*entity.User) *settlementFixture {
	f := &settlementFixture{
		points:      &fakePointsRepo{},
		votes:       &fakeVoteRepo{},
		users:       newFakeUserRepo(users...),
		predictions: newFakePredictionRepo(prediction),
		notifier:    &fakeNotifier{},
	}
	f.svc = NewScoringService(f.points, f.votes, f.users, f.predictions, f.notifier, time.UTC)
	return f
}

func (f *settlementFixture) castVote(userID, predictionID uuid.UUID, choice string) {
	f.votes.votes = append(f.votes.votes, &entity.Vote{
		ID:           uuid.New(),
		UserID:       userID,
		PredictionID: predictionID,
		Choice:       choice,
	})
}

// ---------------------------------------------------------------------------
// SettlePrediction
// ---------------------------------------------------------------------------

func TestSettlePredictionScoresBothSides(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultYes)
	winner := &entity.User{ID: uuid.New(), Username: "winner"}
	loser := &entity.User{ID: uuid.New(), Username: "loser"}

	f := newSettlementFixture(prediction, winner, loser)
	f.castVote(winner.ID, prediction.ID, entity.ChoiceYes)
	f.castVote(loser.ID, prediction.ID, entity.ChoiceNo)

	require.NoError(t, f.svc.SettlePrediction(context.Background(), prediction.ID))

	require.Len(t, f.points.entries, 2)
	assert.Equal(t, PointsForCorrect, f.users.deltas[winner.ID.String()])
	assert.Equal(t, PointsForIncorrect, f.users.deltas[loser.ID.String()])

	settled := f.notifier.byType(entity.NotificationSettled)
	require.Len(t, settled, 2)
	assert.Contains(t, settled[0].Message, "correct (+10 points)")
	assert.Contains(t, settled[1].Message, "incorrect (-2 points)")
}

func TestSettlePredictionMaybeScoresEveryoneIncorrect(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultMaybe)
	yesVoter := &entity.User{ID: uuid.New(), Username: "optimist"}
	noVoter := &entity.User{ID: uuid.New(), Username: "pessimist"}

	f := newSettlementFixture(prediction, yesVoter, noVoter)
	f.castVote(yesVoter.ID, prediction.ID, entity.ChoiceYes)
	f.castVote(noVoter.ID, prediction.ID, entity.ChoiceNo)

	require.NoError(t, f.svc.SettlePrediction(context.Background(), prediction.ID))

	for _, entry := range f.points.entries {
		assert.Equal(t, PointsForIncorrect, entry.Points)
		assert.Equal(t, entity.ResultMaybe, entry.Result)
	}
}

func TestSettlePredictionIsIdempotent(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultYes)
	voter := &entity.User{ID: uuid.New(), Username: "voter"}

	f := newSettlementFixture(prediction, voter)
	f.castVote(voter.ID, prediction.ID, entity.ChoiceYes)

	require.NoError(t, f.svc.SettlePrediction(context.Background(), prediction.ID))
	require.NoError(t, f.svc.SettlePrediction(context.Background(), prediction.ID))

	assert.Len(t, f.points.entries, 1)
	assert.Equal(t, PointsForCorrect, f.users.deltas[voter.ID.String()])
}

func TestSettlePredictionRejectsUnresolved(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultYes)
	prediction.Status = entity.StatusApproved
	prediction.Result = nil

	f := newSettlementFixture(prediction)

	err := f.svc.SettlePrediction(context.Background(), prediction.ID)
	assert.ErrorIs(t, err, apperror.ErrPredictionClosed)
}

func TestSettlePredictionFiresStreakMilestone(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultYes)
	voter := &entity.User{ID: uuid.New(), Username: "hotstreak"}

	f := newSettlementFixture(prediction, voter)
	f.castVote(voter.ID, prediction.ID, entity.ChoiceYes)

	// Two prior correct days; today's settlement makes it three.
	for daysAgo := 1; daysAgo <= 2; daysAgo++ {
		f.points.entries = append(f.points.entries, entity.PointsHistory{
			UserID:       voter.ID,
			PredictionID: uuid.New(),
			Points:       PointsForCorrect,
			ResolvedAt:   prediction.ResolvedAt.AddDate(0, 0, -daysAgo),
		})
	}

	require.NoError(t, f.svc.SettlePrediction(context.Background(), prediction.ID))

	milestones := f.notifier.byType(entity.NotificationStreakMilestone)
	require.Len(t, milestones, 1)
	assert.Contains(t, milestones[0].Message, "3-day streak")
	assert.Equal(t, 3, f.users.users[voter.ID.String()].LastStreakMilestone)
}

func TestSettlePredictionMilestoneFiresOnlyOnce(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultYes)
	voter := &entity.User{ID: uuid.New(), Username: "repeat", LastStreakMilestone: 3}

	f := newSettlementFixture(prediction, voter)
	f.castVote(voter.ID, prediction.ID, entity.ChoiceYes)

	for daysAgo := 1; daysAgo <= 2; daysAgo++ {
		f.points.entries = append(f.points.entries, entity.PointsHistory{
			UserID:       voter.ID,
			PredictionID: uuid.New(),
			Points:       PointsForCorrect,
			ResolvedAt:   prediction.ResolvedAt.AddDate(0, 0, -daysAgo),
		})
	}

	require.NoError(t, f.svc.SettlePrediction(context.Background(), prediction.ID))

	assert.Empty(t, f.notifier.byType(entity.NotificationStreakMilestone))
	assert.Equal(t, 3, f.users.users[voter.ID.String()].LastStreakMilestone)
}

func TestRescanResolvedSettlesMissedVotes(t *testing.T) {
	prediction := resolvedPrediction(entity.ResultNo)
	voter := &entity.User{ID: uuid.New(), Username: "latecomer"}

	f := newSettlementFixture(prediction, voter)
	f.castVote(voter.ID, prediction.ID, entity.ChoiceNo)

	require.NoError(t, f.svc.RescanResolved(context.Background(), 48*time.Hour))

	require.Len(t, f.points.entries, 1)
	assert.Equal(t, PointsForCorrect, f.points.entries[0].Points)
}

func TestScoreVote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		choice      string
		result      string
		wantPoints  int
		wantCorrect bool
	}{
		{entity.ChoiceYes, entity.ResultYes, PointsForCorrect, true},
		{entity.ChoiceNo, entity.ResultNo, PointsForCorrect, true},
		{entity.ChoiceYes, entity.ResultNo, PointsForIncorrect, false},
		{entity.ChoiceNo, entity.ResultYes, PointsForIncorrect, false},
		{entity.ChoiceYes, entity.ResultMaybe, PointsForIncorrect, false},
		{entity.ChoiceNo, entity.ResultMaybe, PointsForIncorrect, false},
	}

	for _, tt := range tests {
		points, correct := scoreVote(tt.choice, tt.result)
		assert.Equal(t, tt.wantPoints, points, "%s vs %s", tt.choice, tt.result)
		assert.Equal(t, tt.wantCorrect, correct, "%s vs %s", tt.choice, tt.result)
	}
}
