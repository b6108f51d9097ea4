package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"anoa.com/nawhoknow/internal/entity"
	"anoa.com/nawhoknow/internal/modules/category/dto"
	"anoa.com/nawhoknow/internal/modules/category/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	commonDto "anoa.com/nawhoknow/pkg/dto"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) error
	// GetAllCategories lists categories with how many predictions each one
	// holds, so the feed filter chips can show counts.
	GetAllCategories(ctx context.Context, filter commonDto.CategoryFilter) (*commonDto.PaginatedCategoryResponse, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

// DefaultSet is the launch category lineup. Seeding inserts it by slug so
// environments stay consistent; admins extend the list from the dashboard.
func DefaultSet() []entity.Category {
	return []entity.Category{
		{Name: "Football", Slug: "football", Description: "Matches, transfers and everything football"},
		{Name: "Music", Slug: "music", Description: "Releases, charts and award shows"},
		{Name: "Politics", Slug: "politics", Description: "Elections and public affairs"},
		{Name: "Entertainment", Slug: "entertainment", Description: "Movies, TV and celebrity news"},
		{Name: "Tech", Slug: "tech", Description: "Product launches and the tech industry"},
	}
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) error {
	slug := slugify(req.Name)

	if existing, _ := s.repo.FindBySlug(ctx, slug); existing != nil {
		return apperror.NewConflictError(fmt.Sprintf("category %q already exists", req.Name))
	}

	category := &entity.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
	}

	return s.repo.Create(ctx, category)
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter commonDto.CategoryFilter) (*commonDto.PaginatedCategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, filter.Search)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.PredictionCounts(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]commonDto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		responses = append(responses, commonDto.CategoryResponse{
			ID:              cat.ID,
			Name:            cat.Name,
			Slug:            cat.Slug,
			Description:     cat.Description,
			PredictionCount: counts[cat.ID],
		})
	}

	return &commonDto.PaginatedCategoryResponse{
		Data: responses,
		Meta: commonDto.PaginationMeta{
			TotalItems: int64(len(responses)),
		},
	}, nil
}

// DeleteCategory refuses to orphan predictions: a category with predictions
// filed under it cannot be removed.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.ErrNotFound
	}

	inUse, err := s.repo.CountPredictions(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperror.NewConflictError(
			fmt.Sprintf("category %q still has %d predictions", category.Name, inUse))
	}

	return s.repo.Delete(ctx, id)
}
