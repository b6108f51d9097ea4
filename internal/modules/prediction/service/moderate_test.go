package prediction

import (
	"context"
	"testing"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	predictionDto "anoa.com/nawhoknow/internal/modules/prediction/dto"
	"anoa.com/nawhoknow/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type modPredictionRepo struct {
	predictions map[uuid.UUID]*entity.Prediction
}

func newModPredictionRepo(predictions ...*entity.Prediction) *modPredictionRepo {
	repo := &modPredictionRepo{predictions: map[uuid.UUID]*entity.Prediction{}}
	for _, p := range predictions {
		repo.predictions[p.ID] = p
	}
	return repo
}

func (r *modPredictionRepo) Create(ctx context.Context, p *entity.Prediction) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.predictions[p.ID] = p
	return nil
}

func (r *modPredictionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Prediction, error) {
	p, ok := r.predictions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *modPredictionRepo) FindVisible(ctx context.Context, statuses []string, categoryID *uuid.UUID) ([]*entity.Prediction, error) {
	out := make([]*entity.Prediction, 0, len(r.predictions))
	for _, p := range r.predictions {
		out = append(out, p)
	}
	return out, nil
}

func (r *modPredictionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Prediction, error) {
	return nil, nil
}

func (r *modPredictionRepo) FindExpiredUnresolved(ctx context.Context, now time.Time) ([]*entity.Prediction, error) {
	return nil, nil
}

func (r *modPredictionRepo) FindResolvedAfter(ctx context.Context, since time.Time) ([]*entity.Prediction, error) {
	return nil, nil
}

func (r *modPredictionRepo) Update(ctx context.Context, p *entity.Prediction) error {
	r.predictions[p.ID] = p
	return nil
}

func (r *modPredictionRepo) UpdateTallies(ctx context.Context, id uuid.UUID, upvotes, downvotes int) error {
	return nil
}

func (r *modPredictionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.predictions, id)
	return nil
}

type modCategoryRepo struct{}

func (modCategoryRepo) Create(ctx context.Context, c *entity.Category) error { return nil }
func (modCategoryRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (modCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (modCategoryRepo) FindAll(ctx context.Context, search string) ([]*entity.Category, error) {
	return nil, nil
}
func (modCategoryRepo) PredictionCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return nil, nil
}
func (modCategoryRepo) CountPredictions(ctx context.Context, id uuid.UUID) (int64, error) {
	return 0, nil
}
func (modCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type modUserRepo struct{}

func (modUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (modUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return &entity.User{Username: "oracle"}, nil
}
func (modUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (modUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (modUserRepo) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	return nil, gorm.ErrRecordNotFound
}
func (modUserRepo) Update(ctx context.Context, user *entity.User) error       { return nil }
func (modUserRepo) FindAll(ctx context.Context) ([]*entity.User, error)       { return nil, nil }
func (modUserRepo) Delete(ctx context.Context, id string) error               { return nil }
func (modUserRepo) Count(ctx context.Context) (int64, error)                  { return 0, nil }
func (modUserRepo) AddPoints(ctx context.Context, id string, delta int) error { return nil }

type modVoteRepo struct{}

func (modVoteRepo) Create(ctx context.Context, vote *entity.Vote) error { return nil }
func (modVoteRepo) FindByUserAndPrediction(ctx context.Context, userID, predictionID uuid.UUID) (*entity.Vote, error) {
	return nil, gorm.ErrRecordNotFound
}
func (modVoteRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Vote, error) {
	return nil, nil
}
func (modVoteRepo) FindByPredictionID(ctx context.Context, predictionID uuid.UUID) ([]*entity.Vote, error) {
	return nil, nil
}
func (modVoteRepo) CountByChoice(ctx context.Context, predictionID uuid.UUID) (int, int, error) {
	return 0, 0, nil
}
func (modVoteRepo) MapUserVotes(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	return nil, nil
}

type modScoring struct {
	settled []uuid.UUID
}

func (s *modScoring) SettlePrediction(ctx context.Context, predictionID uuid.UUID) error {
	s.settled = append(s.settled, predictionID)
	return nil
}

func (s *modScoring) RescanResolved(ctx context.Context, window time.Duration) error { return nil }

type modActivity struct{}

func (modActivity) Record(ctx context.Context, username, action, target string) {}
func (modActivity) GetRecent(ctx context.Context, limit int) ([]entity.Activity, error) {
	return nil, nil
}

type modNotifier struct {
	sent []entity.Notification
}

func (n *modNotifier) CreateNotification(ctx context.Context, notif *entity.Notification) error {
	n.sent = append(n.sent, *notif)
	return nil
}

func (n *modNotifier) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}

func (n *modNotifier) MarkAsRead(ctx context.Context, id uuid.UUID) error               { return nil }
func (n *modNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error        { return nil }
func (n *modNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) { return 0, nil }
func (n *modNotifier) Subscribe(ctx context.Context, id uuid.UUID) *redis.PubSub        { return nil }

type moderationFixture struct {
	svc     Service
	repo    *modPredictionRepo
	scoring *modScoring
	notifs  *modNotifier
}

func newModerationFixture(predictions ...*entity.Prediction) *moderationFixture {
	repo := newModPredictionRepo(predictions...)
	scoring := &modScoring{}
	notifs := &modNotifier{}

	svc := NewService(repo, modCategoryRepo{}, modUserRepo{}, modVoteRepo{}, scoring, modActivity{}, notifs, nil)

	return &moderationFixture{svc: svc, repo: repo, scoring: scoring, notifs: notifs}
}

func moderationPrediction(status string) *entity.Prediction {
	return &entity.Prediction{
		ID:        uuid.New(),
		Topic:     "Will the league title race go to the final day?",
		UserID:    uuid.New(),
		Status:    status,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestModerateApprovesPending(t *testing.T) {
	p := moderationPrediction(entity.StatusPending)
	f := newModerationFixture(p)

	err := f.svc.Moderate(context.Background(), p.ID, predictionDto.ModeratePredictionRequest{Status: entity.StatusApproved})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, f.repo.predictions[p.ID].Status)
	require.Len(t, f.notifs.sent, 1)
	assert.Contains(t, f.notifs.sent[0].Message, "approved")
}

func TestModerateRejectsNonPending(t *testing.T) {
	p := moderationPrediction(entity.StatusApproved)
	f := newModerationFixture(p)

	err := f.svc.Moderate(context.Background(), p.ID, predictionDto.ModeratePredictionRequest{Status: entity.StatusApproved})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

// The status endpoint is the single admin transition: status=resolved with a
// result settles the prediction just like the resolve route does.
func TestModerateResolvedStatusSettlesPrediction(t *testing.T) {
	p := moderationPrediction(entity.StatusApproved)
	f := newModerationFixture(p)

	result := entity.ResultYes
	err := f.svc.Moderate(context.Background(), p.ID, predictionDto.ModeratePredictionRequest{
		Status: entity.StatusResolved,
		Result: &result,
	})
	require.NoError(t, err)

	stored := f.repo.predictions[p.ID]
	assert.Equal(t, entity.StatusResolved, stored.Status)
	require.NotNil(t, stored.Result)
	assert.Equal(t, entity.ResultYes, *stored.Result)
	assert.NotNil(t, stored.ResolvedAt)
	assert.Equal(t, []uuid.UUID{p.ID}, f.scoring.settled)
}

func TestModerateResolvedStatusRequiresResult(t *testing.T) {
	p := moderationPrediction(entity.StatusApproved)
	f := newModerationFixture(p)

	err := f.svc.Moderate(context.Background(), p.ID, predictionDto.ModeratePredictionRequest{Status: entity.StatusResolved})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Equal(t, entity.StatusApproved, f.repo.predictions[p.ID].Status)
	assert.Empty(t, f.scoring.settled)
}

func TestModerateResolvedStatusRejectsPending(t *testing.T) {
	p := moderationPrediction(entity.StatusPending)
	f := newModerationFixture(p)

	result := entity.ResultNo
	err := f.svc.Moderate(context.Background(), p.ID, predictionDto.ModeratePredictionRequest{
		Status: entity.StatusResolved,
		Result: &result,
	})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Empty(t, f.scoring.settled)
}

func TestModerateUnknownPrediction(t *testing.T) {
	f := newModerationFixture()

	err := f.svc.Moderate(context.Background(), uuid.New(), predictionDto.ModeratePredictionRequest{Status: entity.StatusApproved})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
