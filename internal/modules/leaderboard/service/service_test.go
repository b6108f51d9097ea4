package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	leaderboardDto "anoa.com/nawhoknow/internal/modules/leaderboard/dto"
	"anoa.com/nawhoknow/internal/modules/leaderboard/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaderboardRepo struct {
	allTime []repository.Row
	since   []repository.Row

	sinceCalls []time.Time
}

func (f *fakeLeaderboardRepo) AllTime(ctx context.Context) ([]repository.Row, error) {
	return f.allTime, nil
}

func (f *fakeLeaderboardRepo) Since(ctx context.Context, since time.Time, category string) ([]repository.Row, error) {
	f.sinceCalls = append(f.sinceCalls, since)
	return f.since, nil
}

// ranking builds n rows with strictly descending points.
func ranking(n int) []repository.Row {
	rows := make([]repository.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, repository.Row{
			UserID:   uuid.New(),
			Username: fmt.Sprintf("user%02d", i+1),
			Points:   1000 - i*10,
		})
	}
	return rows
}

func TestGetLeaderboardTopSlice(t *testing.T) {
	repo := &fakeLeaderboardRepo{allTime: ranking(20)}
	svc := NewLeaderboardService(repo, nil, 0)

	resp, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Limit: 5}, uuid.Nil)
	require.NoError(t, err)

	require.Len(t, resp.Entries, 5)
	assert.Equal(t, PeriodAll, resp.Period)
	for i, entry := range resp.Entries {
		assert.Equal(t, i+1, entry.Rank)
		assert.False(t, entry.IsCurrentUser)
	}
	assert.Equal(t, "user01", resp.Entries[0].Username)
}

func TestGetLeaderboardMarksViewerInsideTop(t *testing.T) {
	rows := ranking(10)
	repo := &fakeLeaderboardRepo{allTime: rows}
	svc := NewLeaderboardService(repo, nil, 0)

	resp, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Limit: 5}, rows[2].UserID)
	require.NoError(t, err)

	require.Len(t, resp.Entries, 5)
	assert.True(t, resp.Entries[2].IsCurrentUser)
	assert.Equal(t, 3, resp.Entries[2].Rank)
}

func TestGetLeaderboardAppendsViewerBelowTop(t *testing.T) {
	rows := ranking(20)
	repo := &fakeLeaderboardRepo{allTime: rows}
	svc := NewLeaderboardService(repo, nil, 0)

	viewer := rows[14].UserID
	resp, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Limit: 10}, viewer)
	require.NoError(t, err)

	require.Len(t, resp.Entries, 11)
	last := resp.Entries[10]
	assert.True(t, last.IsCurrentUser)
	assert.Equal(t, 15, last.Rank)
	assert.Equal(t, viewer, last.UserID)
}

func TestGetLeaderboardUnrankedViewer(t *testing.T) {
	repo := &fakeLeaderboardRepo{allTime: ranking(5)}
	svc := NewLeaderboardService(repo, nil, 0)

	resp, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Limit: 10}, uuid.New())
	require.NoError(t, err)

	assert.Len(t, resp.Entries, 5)
	for _, entry := range resp.Entries {
		assert.False(t, entry.IsCurrentUser)
	}
}

func TestGetLeaderboardDefaultsLimit(t *testing.T) {
	repo := &fakeLeaderboardRepo{allTime: ranking(30)}
	svc := NewLeaderboardService(repo, nil, 0)

	resp, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{}, uuid.Nil)
	require.NoError(t, err)

	assert.Len(t, resp.Entries, defaultLimit)
}

func TestGetLeaderboardPeriodWindows(t *testing.T) {
	repo := &fakeLeaderboardRepo{since: ranking(3)}
	svc := NewLeaderboardService(repo, nil, 0)

	_, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Period: PeriodWeek}, uuid.Nil)
	require.NoError(t, err)
	_, err = svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Period: PeriodMonth}, uuid.Nil)
	require.NoError(t, err)

	require.Len(t, repo.sinceCalls, 2)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), repo.sinceCalls[0], time.Minute)
	assert.WithinDuration(t, time.Now().AddDate(0, -1, 0), repo.sinceCalls[1], time.Minute)
}

func TestGetLeaderboardAllTimeWithCategoryUsesHistory(t *testing.T) {
	repo := &fakeLeaderboardRepo{since: ranking(3)}
	svc := NewLeaderboardService(repo, nil, 0)

	resp, err := svc.GetLeaderboard(context.Background(), leaderboardDto.LeaderboardFilter{Category: "football"}, uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, "football", resp.Category)
	require.Len(t, repo.sinceCalls, 1)
	assert.True(t, repo.sinceCalls[0].IsZero())
}

func TestRankOf(t *testing.T) {
	rows := ranking(10)
	repo := &fakeLeaderboardRepo{allTime: rows}
	svc := NewLeaderboardService(repo, nil, 0)

	rank, err := svc.RankOf(context.Background(), rows[6].UserID)
	require.NoError(t, err)
	assert.Equal(t, 7, rank)

	rank, err = svc.RankOf(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, rank)
}

func TestCacheTTLComesFromCaller(t *testing.T) {
	svc := NewLeaderboardService(&fakeLeaderboardRepo{}, nil, 5*time.Minute).(*leaderboardService)
	assert.Equal(t, 5*time.Minute, svc.cacheTTL)

	svc = NewLeaderboardService(&fakeLeaderboardRepo{}, nil, 0).(*leaderboardService)
	assert.Equal(t, 30*time.Second, svc.cacheTTL)
}
