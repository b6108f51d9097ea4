package vote

import (
	"context"
	"testing"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	scoringRepo "anoa.com/nawhoknow/internal/modules/scoring/repository"
	voteDto "anoa.com/nawhoknow/internal/modules/vote/dto"
	"anoa.com/nawhoknow/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memVoteRepo struct {
	votes []*entity.Vote
}

func (m *memVoteRepo) Create(ctx context.Context, vote *entity.Vote) error {
	m.votes = append(m.votes, vote)
	return nil
}

func (m *memVoteRepo) FindByUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (*entity.Vote, error) {
	for _, v := range m.votes {
		if v.UserID == userID && v.PredictionID == predictionID {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memVoteRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Vote, error) {
	var out []*entity.Vote
	for _, v := range m.votes {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVoteRepo) FindByPredictionID(ctx context.Context, predictionID uuid.UUID) ([]*entity.Vote, error) {
	var out []*entity.Vote
	for _, v := range m.votes {
		if v.PredictionID == predictionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVoteRepo) CountByChoice(ctx context.Context, predictionID uuid.UUID) (int, int, error) {
	yes, no := 0, 0
	for _, v := range m.votes {
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

func (m *memVoteRepo) MapUserVotes(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	out := map[uuid.UUID]string{}
	for _, v := range m.votes {
		if v.UserID == userID {
			out[v.PredictionID] = v.Choice
		}
	}
	return out, nil
}

type memPredictionRepo struct {
	predictions map[uuid.UUID]*entity.Prediction
}

func (m *memPredictionRepo) Create(ctx context.Context, p *entity.Prediction) error {
	m.predictions[p.ID] = p
	return nil
}

func (m *memPredictionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Prediction, error) {
	if p, ok := m.predictions[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memPredictionRepo) FindVisible(ctx context.Context, statuses []string, categoryID *uuid.UUID) ([]*entity.Prediction, error) {
	return nil, nil
}

func (m *memPredictionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Prediction, error) {
	return nil, nil
}

func (m *memPredictionRepo) FindExpiredUnresolved(ctx context.Context, now time.Time) ([]*entity.Prediction, error) {
	return nil, nil
}

func (m *memPredictionRepo) FindResolvedAfter(ctx context.Context, since time.Time) ([]*entity.Prediction, error) {
	return nil, nil
}

func (m *memPredictionRepo) Update(ctx context.Context, p *entity.Prediction) error {
	m.predictions[p.ID] = p
	return nil
}

func (m *memPredictionRepo) UpdateTallies(ctx context.Context, id uuid.UUID, upvotes, downvotes int) error {
	if p, ok := m.predictions[id]; ok {
		p.Upvotes, p.Downvotes = upvotes, downvotes
	}
	return nil
}

func (m *memPredictionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.predictions, id)
	return nil
}

type memUserRepo struct {
	users map[string]*entity.User
}

func (m *memUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return &entity.Role{Name: name}, nil
}

func (m *memUserRepo) Update(ctx context.Context, user *entity.User) error       { return nil }
func (m *memUserRepo) FindAll(ctx context.Context) ([]*entity.User, error)       { return nil, nil }
func (m *memUserRepo) Delete(ctx context.Context, id string) error               { return nil }
func (m *memUserRepo) Count(ctx context.Context) (int64, error)                  { return 0, nil }
func (m *memUserRepo) AddPoints(ctx context.Context, id string, delta int) error { return nil }

type memPointsRepo struct {
	entries []entity.PointsHistory
}

func (m *memPointsRepo) Create(ctx context.Context, entry *entity.PointsHistory) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memPointsRepo) ExistsForUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (bool, error) {
	return false, nil
}

func (m *memPointsRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PointsHistory, error) {
	var out []entity.PointsHistory
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memPointsRepo) SumByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (m *memPointsRepo) AggregateByUser(ctx context.Context, since *time.Time, category string) ([]scoringRepo.UserPoints, error) {
	return nil, nil
}

type memActivity struct {
	recorded []string
}

func (m *memActivity) Record(ctx context.Context, username, action, target string) {
	m.recorded = append(m.recorded, action)
}

func (m *memActivity) GetRecent(ctx context.Context, limit int) ([]entity.Activity, error) {
	return nil, nil
}

type memNotifier struct {
	sent []entity.Notification
}

func (m *memNotifier) CreateNotification(ctx context.Context, n *entity.Notification) error {
	m.sent = append(m.sent, *n)
	return nil
}

func (m *memNotifier) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}

func (m *memNotifier) MarkAsRead(ctx context.Context, id uuid.UUID) error               { return nil }
func (m *memNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error        { return nil }
func (m *memNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) { return 0, nil }
func (m *memNotifier) Subscribe(ctx context.Context, id uuid.UUID) *redis.PubSub        { return nil }

type voteFixture struct {
	votes       *memVoteRepo
	predictions *memPredictionRepo
	users       *memUserRepo
	activity    *memActivity
	notifier    *memNotifier
	svc         Service
}

func newVoteFixture(prediction *entity.Prediction, users ...*entity.User) *voteFixture {
	f := &voteFixture{
		votes:       &memVoteRepo{},
		predictions: &memPredictionRepo{predictions: map[uuid.UUID]*entity.Prediction{prediction.ID: prediction}},
		users:       &memUserRepo{users: map[string]*entity.User{}},
		activity:    &memActivity{},
		notifier:    &memNotifier{},
	}
	for _, u := range users {
		f.users.users[u.ID.String()] = u
	}
	f.svc = NewService(f.votes, f.predictions, f.users, &memPointsRepo{}, f.activity, f.notifier, nil)
	return f
}

func openPrediction(owner uuid.UUID) *entity.Prediction {
	return &entity.Prediction{
		ID:        uuid.New(),
		Topic:     "Will the league title change hands?",
		UserID:    owner,
		Status:    entity.StatusApproved,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func TestCastVoteRecountsTallies(t *testing.T) {
	owner := uuid.New()
	voter := &entity.User{ID: uuid.New(), Username: "voter"}
	prediction := openPrediction(owner)

	f := newVoteFixture(prediction, voter)

	tallies, err := f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
	require.NoError(t, err)

	assert.Equal(t, 1, tallies.Yes)
	assert.Equal(t, 0, tallies.No)

	// Denormalized counters follow the recount.
	assert.Equal(t, 1, prediction.Upvotes)
	assert.Equal(t, 0, prediction.Downvotes)
}

func TestCastVoteNotifiesOwner(t *testing.T) {
	owner := uuid.New()
	voter := &entity.User{ID: uuid.New(), Username: "voter"}
	prediction := openPrediction(owner)

	f := newVoteFixture(prediction, voter)

	_, err := f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceNo})
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, owner, f.notifier.sent[0].UserID)
	assert.Equal(t, entity.NotificationVoteCast, f.notifier.sent[0].Type)
	assert.Contains(t, f.notifier.sent[0].Message, "voter voted No")

	assert.Equal(t, []string{entity.ActivityVoted}, f.activity.recorded)
}

func TestCastVoteOwnVoteSkipsNotification(t *testing.T) {
	owner := &entity.User{ID: uuid.New(), Username: "owner"}
	prediction := openPrediction(owner.ID)

	f := newVoteFixture(prediction, owner)

	_, err := f.svc.CastVote(context.Background(), owner.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
	require.NoError(t, err)

	assert.Empty(t, f.notifier.sent)
}

func TestCastVoteRejectsDoubleVote(t *testing.T) {
	voter := &entity.User{ID: uuid.New(), Username: "voter"}
	prediction := openPrediction(uuid.New())

	f := newVoteFixture(prediction, voter)

	_, err := f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
	require.NoError(t, err)

	_, err = f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceNo})
	assert.ErrorIs(t, err, apperror.ErrAlreadyVoted)

	// The rejected second vote changed nothing.
	assert.Len(t, f.votes.votes, 1)
	assert.Equal(t, entity.ChoiceYes, f.votes.votes[0].Choice)
}

func TestCastVotePreconditions(t *testing.T) {
	voter := &entity.User{ID: uuid.New(), Username: "voter"}

	t.Run("unknown prediction", func(t *testing.T) {
		f := newVoteFixture(openPrediction(uuid.New()), voter)

		_, err := f.svc.CastVote(context.Background(), voter.ID, uuid.New(), voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("pending prediction is closed", func(t *testing.T) {
		prediction := openPrediction(uuid.New())
		prediction.Status = entity.StatusPending
		f := newVoteFixture(prediction, voter)

		_, err := f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
		assert.ErrorIs(t, err, apperror.ErrPredictionClosed)
	})

	t.Run("resolved prediction is closed", func(t *testing.T) {
		prediction := openPrediction(uuid.New())
		prediction.Status = entity.StatusResolved
		f := newVoteFixture(prediction, voter)

		_, err := f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
		assert.ErrorIs(t, err, apperror.ErrPredictionClosed)
	})

	t.Run("expired prediction", func(t *testing.T) {
		prediction := openPrediction(uuid.New())
		prediction.ExpiresAt = time.Now().Add(-time.Minute)
		f := newVoteFixture(prediction, voter)

		_, err := f.svc.CastVote(context.Background(), voter.ID, prediction.ID, voteDto.CastVoteRequest{Choice: entity.ChoiceYes})
		assert.ErrorIs(t, err, apperror.ErrPredictionExpired)
	})
}

func TestGetTalliesWithoutCache(t *testing.T) {
	prediction := openPrediction(uuid.New())
	f := newVoteFixture(prediction)

	for i := 0; i < 3; i++ {
		f.votes.votes = append(f.votes.votes, &entity.Vote{
			UserID:       uuid.New(),
			PredictionID: prediction.ID,
			Choice:       entity.ChoiceYes,
		})
	}
	f.votes.votes = append(f.votes.votes, &entity.Vote{
		UserID:       uuid.New(),
		PredictionID: prediction.ID,
		Choice:       entity.ChoiceNo,
	})

	tallies, err := f.svc.GetTallies(context.Background(), prediction.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, tallies.Yes)
	assert.Equal(t, 1, tallies.No)
}

func TestGetUserVotesJoinsSettledPoints(t *testing.T) {
	voter := &entity.User{ID: uuid.New(), Username: "voter"}
	result := entity.ResultYes

	settled := &entity.Prediction{
		ID:     uuid.New(),
		Topic:  "settled question",
		Status: entity.StatusResolved,
		Result: &result,
	}
	open := openPrediction(uuid.New())

	f := newVoteFixture(open, voter)
	points := &memPointsRepo{entries: []entity.PointsHistory{{
		UserID:       voter.ID,
		PredictionID: settled.ID,
		Points:       10,
	}}}
	f.svc = NewService(f.votes, f.predictions, f.users, points, f.activity, f.notifier, nil)

	f.votes.votes = append(f.votes.votes,
		&entity.Vote{UserID: voter.ID, PredictionID: settled.ID, Choice: entity.ChoiceYes, Prediction: *settled},
		&entity.Vote{UserID: voter.ID, PredictionID: open.ID, Choice: entity.ChoiceNo, Prediction: *open},
	)

	responses, err := f.svc.GetUserVotes(context.Background(), voter.ID)
	require.NoError(t, err)
	require.Len(t, responses, 2)

	require.NotNil(t, responses[0].Points)
	assert.Equal(t, 10, *responses[0].Points)
	require.NotNil(t, responses[0].IsCorrect)
	assert.True(t, *responses[0].IsCorrect)

	// The open vote has no settlement yet.
	assert.Nil(t, responses[1].Points)
	assert.Nil(t, responses[1].IsCorrect)
}
