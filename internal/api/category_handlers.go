package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/glyphkit/glyphkit-server/internal/domain"
	"github.com/glyphkit/glyphkit-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/categories",
		Summary:     "List categories",
		Description: "Returns all categories ordered by name",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/categories/{id}",
		Summary:     "Get category",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/categories",
		Summary:       "Create category",
		Description:   "Creates a category. The slug is derived from the name when omitted.",
		Tags:          []string{"Categories"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/categories/{id}",
		Summary:     "Update category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a category. Fails with a conflict when non-deleted icons still reference it.",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID          string    `json:"id" doc:"Category ID"`
	Name        string    `json:"name" doc:"Display name"`
	Slug        string    `json:"slug" doc:"URL-safe identifier referenced by icons"`
	Description string    `json:"description,omitempty" doc:"Optional description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	CreatedBy   string    `json:"created_by" doc:"Creating user ID"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
	UpdatedBy   string    `json:"updated_by" doc:"Last updating user ID"`
}

// ListCategoriesOutput wraps the category list for Huma.
type ListCategoriesOutput struct {
	Body []CategoryResponse
}

// GetCategoryInput identifies one category.
type GetCategoryInput struct {
	ID string `path:"id" doc:"Category ID"`
}

// CategoryOutput wraps a single category for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100" doc:"Display name"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,max=100" doc:"Explicit slug, derived from name when omitted"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500" doc:"Optional description"`
}

// CreateCategoryInput wraps the create request for Huma.
type CreateCategoryInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          CreateCategoryRequest
}

// UpdateCategoryRequest is the request body for a partial category update.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100" doc:"New display name"`
	Slug        *string `json:"slug,omitempty" validate:"omitempty,min=1,max=100" doc:"New slug"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500" doc:"New description"`
}

// UpdateCategoryInput wraps the update request for Huma.
type UpdateCategoryInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Category ID"`
	Body          UpdateCategoryRequest
}

// DeleteCategoryInput identifies the category to delete.
type DeleteCategoryInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Category ID"`
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Category.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, mapCategory(c))
	}

	return &ListCategoriesOutput{Body: out}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Category.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Category.Create(ctx, service.CreateCategoryRequest{
		Name:        input.Body.Name,
		Slug:        input.Body.Slug,
		Description: input.Body.Description,
	}, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Category.Update(ctx, input.ID, service.UpdateCategoryRequest{
		Name:        input.Body.Name,
		Slug:        input.Body.Slug,
		Description: input.Body.Description,
	}, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Category.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}

// === Helpers ===

func mapCategory(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		CreatedBy:   c.CreatedBy,
		UpdatedAt:   c.UpdatedAt,
		UpdatedBy:   c.UpdatedBy,
	}
}
