// Package catalog serves the reference data group buys point at:
// categories and pickup locations.
package catalog

import (
	"context"
	"errors"

	"github.com/groupbuy/backend/internal/domain/catalog"
	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ListCategories returns every category ordered by sort order
func (s *CategoryService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = ToCategoryResponse(c)
	}
	return out, nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Code, req.Name, req.NameEn)
	if err != nil {
		return nil, err
	}

	// Check if code already exists
	exists, err := s.categoryRepo.ExistsByCode(ctx, category.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
	}

	if err := category.SetAppearance(req.Icon, req.Color); err != nil {
		return nil, err
	}
	category.SortOrder = req.SortOrder

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this code already exists")
		}
		return nil, err
	}

	s.logger.Info("Category created", zap.String("code", category.Code))
	resp := ToCategoryResponse(category)
	return &resp, nil
}
