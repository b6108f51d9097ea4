package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	leaderboard "anoa.com/nawhoknow/internal/modules/leaderboard/service"
	profileDto "anoa.com/nawhoknow/internal/modules/profile/dto"
	scoringRepo "anoa.com/nawhoknow/internal/modules/scoring/repository"
	scoring "anoa.com/nawhoknow/internal/modules/scoring/service"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	commonDto "anoa.com/nawhoknow/pkg/dto"
	"anoa.com/nawhoknow/pkg/storage"
	"gorm.io/gorm"
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error)
	GetProfileByUsername(ctx context.Context, username string) (*profileDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error)
	GetShareCard(ctx context.Context, userID string) (*profileDto.ShareResponse, error)
	// GetPointsHistory returns the settled ledger, most recent first.
	GetPointsHistory(ctx context.Context, userID string) ([]entity.PointsHistory, error)
}

type profileService struct {
	repo               userRepo.UserRepository
	pointsRepo         scoringRepo.PointsRepository
	leaderboardService leaderboard.LeaderboardService
	imageStorage       storage.ImageStorage
	baseURL            string
	loc                *time.Location
}

func NewProfileService(
	repo userRepo.UserRepository,
	pointsRepo scoringRepo.PointsRepository,
	leaderboardService leaderboard.LeaderboardService,
	imageStorage storage.ImageStorage,
	baseURL string,
	loc *time.Location,
) ProfileService {
	if baseURL == "" {
		baseURL = "https://nawhoknow.app"
	}
	if loc == nil {
		loc = time.Local
	}

	return &profileService{
		repo:               repo,
		pointsRepo:         pointsRepo,
		leaderboardService: leaderboardService,
		imageStorage:       imageStorage,
		baseURL:            baseURL,
		loc:                loc,
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID string) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	resp, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Email = user.Email
	return resp, nil
}

func (s *profileService) GetProfileByUsername(ctx context.Context, username string) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	return s.buildProfile(ctx, user)
}

func (s *profileService) buildProfile(ctx context.Context, user *entity.User) (*profileDto.ProfileResponse, error) {
	entries, err := s.pointsRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	historyTotal, err := s.pointsRepo.SumByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	rank, err := s.leaderboardService.RankOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, e := range entries {
		if e.Points > 0 {
			correct++
		}
	}

	correctPercent := 0.0
	if len(entries) > 0 {
		correctPercent = float64(correct) / float64(len(entries)) * 100
	}

	streak := scoring.CalculateStreak(entries, s.loc)

	return &profileDto.ProfileResponse{
		Username:       user.Username,
		AvatarURL:      user.AvatarURL,
		Points:         user.Points,
		HistoryTotal:   historyTotal,
		Rank:           rank,
		Streak:         streak,
		CorrectPercent: correctPercent,
		TotalSettled:   len(entries),
		Badges:         scoring.EvaluateBadges(user.Points, streak, rank),
		MemberSince:    user.CreatedAt,
	}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, input profileDto.UpdateProfileInput, avatar *commonDto.AvatarFile) (*profileDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	if input.Username != nil && *input.Username != "" && *input.Username != user.Username {
		sanitized := strings.ReplaceAll(*input.Username, " ", "_")
		if len(sanitized) < 3 || len(sanitized) > 50 {
			return nil, fmt.Errorf("username must be 3-50 characters: %w", apperror.ErrInvalidInput)
		}
		if _, err := s.repo.FindByUsername(ctx, sanitized); err == nil {
			return nil, apperror.NewConflictError("username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = sanitized
	}

	if avatar != nil && avatar.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, fmt.Errorf("avatar upload failed: %w", err)
		}
		if user.AvatarURL != nil {
			// Old avatar cleanup is best-effort.
			_ = s.imageStorage.DeleteImage(ctx, *user.AvatarURL)
		}
		user.AvatarURL = &url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	resp.Email = user.Email
	return resp, nil
}

func (s *profileService) GetPointsHistory(ctx context.Context, userID string) ([]entity.PointsHistory, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	return s.pointsRepo.FindByUserID(ctx, user.ID)
}

// GetShareCard renders the copy-paste share text the profile page offers.
func (s *profileService) GetShareCard(ctx context.Context, userID string) (*profileDto.ShareResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	profile, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	rankText := "N/A"
	if profile.Rank > 0 {
		rankText = fmt.Sprintf("%d", profile.Rank)
	}

	icons := make([]string, 0, len(profile.Badges))
	for _, b := range profile.Badges {
		icons = append(icons, b.Icon)
	}

	shareURL := fmt.Sprintf("%s/u/%s", s.baseURL, user.Username)
	shareText := fmt.Sprintf(
		"%s on NaWhoKnow! Rank: #%s, Points: %d, Correct: %.0f%%, Streak: %d days, Badges: %s 🔥 Join me at %s",
		user.Username, rankText, profile.Points, profile.CorrectPercent, profile.Streak, strings.Join(icons, ""), shareURL,
	)

	return &profileDto.ShareResponse{
		ShareText: shareText,
		ShareURL:  shareURL,
	}, nil
}
