package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glyphkit/glyphkit-server/internal/domain"
	domainerrors "github.com/glyphkit/glyphkit-server/internal/errors"
	"github.com/glyphkit/glyphkit-server/internal/id"
	"github.com/glyphkit/glyphkit-server/internal/store"
)

// CategoryService manages the category taxonomy.
type CategoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger,
	}
}

// CreateCategoryRequest contains the fields for a new category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryRequest contains the partial update fields for a category.
// Nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// categorySlug derives a slug from a category name: lowercased, spaces and
// slashes collapsed to hyphens.
func categorySlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "/", "-")
	return strings.Join(strings.Fields(s), "-")
}

// Create adds a new category. The slug is derived from the name when omitted.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest, by string) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = categorySlug(req.Name)
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := time.Now()
	category := &domain.Category{
		ID:          categoryID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   now,
		CreatedBy:   by,
		UpdatedAt:   now,
		UpdatedBy:   by,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("category name or slug already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("category created", "category_id", categoryID, "slug", slug)
	}
	return category, nil
}

// Get retrieves a category by ID.
func (s *CategoryService) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Update applies a partial update to a category.
func (s *CategoryService) Update(ctx context.Context, categoryID string, req UpdateCategoryRequest, by string) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	category.Touch(by)

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("category name or slug already exists")
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

// Delete removes a category. Categories still referenced by live icons are
// protected; the conflict carries the referencing icon count.
func (s *CategoryService) Delete(ctx context.Context, categoryID string) error {
	category, err := s.Get(ctx, categoryID)
	if err != nil {
		return err
	}

	count, err := s.store.CountLiveIconsByCategory(ctx, category.Slug)
	if err != nil {
		return fmt.Errorf("count category icons: %w", err)
	}
	if count > 0 {
		return domainerrors.ConflictWithDetails(
			"category is referenced by icons",
			map[string]any{"iconCount": count},
		)
	}

	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("category deleted", "category_id", categoryID, "slug", category.Slug)
	}
	return nil
}
