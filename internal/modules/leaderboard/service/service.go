package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	leaderboardDto "anoa.com/nawhoknow/internal/modules/leaderboard/dto"
	"anoa.com/nawhoknow/internal/modules/leaderboard/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodAll   = "all"

	defaultLimit = 10
)

type LeaderboardService interface {
	// GetLeaderboard returns the top slice for a period/category. When the
	// viewer ranks below the slice, their row is appended with its true rank.
	GetLeaderboard(ctx context.Context, filter leaderboardDto.LeaderboardFilter, currentUserID uuid.UUID) (*leaderboardDto.LeaderboardResponse, error)
	// RankOf returns the viewer's 1-based all-time rank, 0 if unranked.
	RankOf(ctx context.Context, userID uuid.UUID) (int, error)
}

type leaderboardService struct {
	repo        repository.LeaderboardRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewLeaderboardService(repo repository.LeaderboardRepository, redisClient *redis.Client, cacheTTL time.Duration) LeaderboardService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	return &leaderboardService{
		repo:        repo,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, filter leaderboardDto.LeaderboardFilter, currentUserID uuid.UUID) (*leaderboardDto.LeaderboardResponse, error) {
	period := filter.Period
	if period == "" {
		period = PeriodAll
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.projection(ctx, period, filter.Category)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, limit+1)
	viewerIncluded := currentUserID == uuid.Nil

	for i, row := range rows {
		if i >= limit && viewerIncluded {
			break
		}

		entry := leaderboardDto.LeaderboardEntry{
			Rank:      i + 1,
			UserID:    row.UserID,
			Username:  row.Username,
			AvatarURL: row.AvatarURL,
			Points:    row.Points,
		}

		if row.UserID == currentUserID {
			entry.IsCurrentUser = true
			viewerIncluded = true
			if i >= limit {
				entries = append(entries, entry)
				break
			}
		}

		if i < limit {
			entries = append(entries, entry)
		}
	}

	return &leaderboardDto.LeaderboardResponse{
		Period:   period,
		Category: filter.Category,
		Entries:  entries,
	}, nil
}

func (s *leaderboardService) RankOf(ctx context.Context, userID uuid.UUID) (int, error) {
	rows, err := s.projection(ctx, PeriodAll, "")
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		if row.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// projection fetches the full ordered ranking, preferring the Redis cache.
// The cache is a pure read-through; settlement never has to invalidate it
// because the TTL is short.
func (s *leaderboardService) projection(ctx context.Context, period, category string) ([]repository.Row, error) {
	key := fmt.Sprintf("leaderboard:%s:%s", period, category)

	if s.redisClient != nil {
		if raw, err := s.redisClient.Get(ctx, key).Result(); err == nil {
			var rows []repository.Row
			if err := json.Unmarshal([]byte(raw), &rows); err == nil {
				return rows, nil
			}
		}
	}

	var rows []repository.Row
	var err error

	switch period {
	case PeriodWeek:
		rows, err = s.repo.Since(ctx, time.Now().AddDate(0, 0, -7), category)
	case PeriodMonth:
		rows, err = s.repo.Since(ctx, time.Now().AddDate(0, -1, 0), category)
	default:
		if category != "" {
			// The users.points column has no category dimension; fall back
			// to the full history aggregation.
			rows, err = s.repo.Since(ctx, time.Time{}, category)
		} else {
			rows, err = s.repo.AllTime(ctx)
		}
	}
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(rows); err == nil {
			if err := s.redisClient.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("Failed to cache leaderboard %s: %v", key, err)
			}
		}
	}

	return rows, nil
}
