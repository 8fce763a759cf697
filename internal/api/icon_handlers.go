package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/glyphkit/glyphkit-server/internal/domain"
	"github.com/glyphkit/glyphkit-server/internal/service"
	"github.com/glyphkit/glyphkit-server/internal/store"
)

func (s *Server) registerIconRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listIcons",
		Method:      http.MethodGet,
		Path:        "/api/icons",
		Summary:     "List icons",
		Description: "Returns icons newest first. Soft-deleted and deprecated icons are excluded unless requested.",
		Tags:        []string{"Icons"},
	}, s.handleListIcons)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportIcons",
		Method:      http.MethodGet,
		Path:        "/api/icons/export/build",
		Summary:     "Export icons for build",
		Description: "Returns all non-deleted icons in a stable shape and order for build pipelines",
		Tags:        []string{"Icons"},
	}, s.handleExportIcons)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIcon",
		Method:      http.MethodGet,
		Path:        "/api/icons/{id}",
		Summary:     "Get icon",
		Description: "Returns one icon by ID. Soft-deleted icons remain readable.",
		Tags:        []string{"Icons"},
	}, s.handleGetIcon)

	huma.Register(s.api, huma.Operation{
		OperationID: "getIconHistory",
		Method:      http.MethodGet,
		Path:        "/api/icons/{id}/history",
		Summary:     "Icon version history",
		Description: "Returns the append-only version records for an icon, newest first",
		Tags:        []string{"Icons"},
	}, s.handleGetIconHistory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createIcon",
		Method:        http.MethodPost,
		Path:          "/api/icons",
		Summary:       "Create icon",
		Description:   "Creates an icon variant. The (name, size, property) tuple must be unique among live icons.",
		Tags:          []string{"Icons"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateIcon)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertIconFromFigma",
		Method:      http.MethodPost,
		Path:        "/api/icons/from-figma",
		Summary:     "Upsert icon from Figma",
		Description: "Creates or updates an icon pushed by the Figma plugin, matched by live (name, size, property)",
		Tags:        []string{"Icons"},
		Security:    []map[string][]string{{"pluginToken": {}}},
	}, s.handleUpsertIconFromFigma)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateIcon",
		Method:      http.MethodPatch,
		Path:        "/api/icons/{id}",
		Summary:     "Update icon",
		Description: "Applies a partial update and bumps the version",
		Tags:        []string{"Icons"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateIcon)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteIcon",
		Method:      http.MethodDelete,
		Path:        "/api/icons/{id}",
		Summary:     "Delete icon",
		Description: "Soft-deletes an icon, freeing its identity for reuse",
		Tags:        []string{"Icons"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteIcon)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreIcon",
		Method:      http.MethodPatch,
		Path:        "/api/icons/{id}/restore",
		Summary:     "Restore icon",
		Description: "Restores a soft-deleted icon unless its identity has been taken by a newer icon",
		Tags:        []string{"Icons"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreIcon)

	huma.Register(s.api, huma.Operation{
		OperationID: "deprecateIcon",
		Method:      http.MethodPatch,
		Path:        "/api/icons/{id}/deprecate",
		Summary:     "Deprecate icon",
		Description: "Sets or clears the deprecation flag without changing the version",
		Tags:        []string{"Icons"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeprecateIcon)
}

// === DTOs ===

// IconResponse contains icon data in API responses.
type IconResponse struct {
	ID            string         `json:"id" doc:"Icon ID"`
	Name          string         `json:"name" doc:"Source name, may contain path segments"`
	Slug          string         `json:"slug" doc:"Derived slug"`
	SVG           string         `json:"svg" doc:"SVG markup"`
	Tags          domain.TagList `json:"tags" doc:"Normalized tags"`
	Category      string         `json:"category,omitempty" doc:"Category slug, empty when uncategorized"`
	Size          string         `json:"size" doc:"Size variant token"`
	Property      string         `json:"property" doc:"Style variant token"`
	LatestVersion int            `json:"latest_version" doc:"Current content version"`
	IsDeprecated  bool           `json:"is_deprecated" doc:"Deprecation flag"`
	DeletedAt     *time.Time     `json:"deleted_at,omitempty" doc:"Soft deletion timestamp"`
	CreatedAt     time.Time      `json:"created_at" doc:"Creation timestamp"`
	CreatedBy     string         `json:"created_by" doc:"Creating user ID"`
	UpdatedAt     time.Time      `json:"updated_at" doc:"Last update timestamp"`
	UpdatedBy     string         `json:"updated_by" doc:"Last updating user ID"`
}

// IconVersionResponse contains one version history record.
type IconVersionResponse struct {
	ID         string         `json:"id" doc:"Version record ID"`
	IconID     string         `json:"icon_id" doc:"Owning icon ID"`
	Version    int            `json:"version" doc:"Version number at the time of the change"`
	Name       string         `json:"name" doc:"Name snapshot"`
	SVG        string         `json:"svg" doc:"SVG snapshot"`
	Tags       domain.TagList `json:"tags" doc:"Tags snapshot"`
	Category   string         `json:"category,omitempty" doc:"Category snapshot"`
	Size       string         `json:"size" doc:"Size snapshot"`
	Property   string         `json:"property" doc:"Property snapshot"`
	ChangeType string         `json:"change_type" doc:"CREATE, UPDATE, DELETE, RESTORE or DEPRECATE"`
	Memo       string         `json:"memo,omitempty" doc:"Optional change memo"`
	CreatedAt  time.Time      `json:"created_at" doc:"Change timestamp"`
	CreatedBy  string         `json:"created_by" doc:"Acting user ID"`
}

// ExportIconResponse is the stable icon shape consumed by build pipelines.
type ExportIconResponse struct {
	ID           string         `json:"id" doc:"Icon ID"`
	Name         string         `json:"name" doc:"Source name"`
	Slug         string         `json:"slug" doc:"Derived slug"`
	SVG          string         `json:"svg" doc:"SVG markup"`
	Tags         domain.TagList `json:"tags" doc:"Normalized tags"`
	Category     string         `json:"category,omitempty" doc:"Category slug"`
	Size         string         `json:"size" doc:"Size variant token"`
	Property     string         `json:"property" doc:"Style variant token"`
	IsDeprecated bool           `json:"is_deprecated" doc:"Deprecation flag"`
}

// ListIconsInput carries the list filter query parameters.
type ListIconsInput struct {
	Search            string `query:"search" doc:"Substring match on name or slug"`
	Category          string `query:"category" doc:"Exact category slug"`
	IncludeDeprecated bool   `query:"includeDeprecated" doc:"Include deprecated icons"`
	IncludeDeleted    bool   `query:"includeDeleted" doc:"Include soft-deleted icons"`
}

// ListIconsOutput wraps the icon list for Huma.
type ListIconsOutput struct {
	Body []IconResponse
}

// GetIconInput identifies one icon.
type GetIconInput struct {
	ID string `path:"id" doc:"Icon ID"`
}

// IconOutput wraps a single icon for Huma.
type IconOutput struct {
	Body IconResponse
}

// IconHistoryOutput wraps the version list for Huma.
type IconHistoryOutput struct {
	Body []IconVersionResponse
}

// ExportIconsOutput wraps the export list for Huma.
type ExportIconsOutput struct {
	Body []ExportIconResponse
}

// CreateIconRequest is the request body for creating an icon.
type CreateIconRequest struct {
	Name     string         `json:"name" validate:"required,max=200" doc:"Source name, a leading icon/ segment is stripped from the slug"`
	SVG      string         `json:"svg" validate:"required" doc:"SVG markup"`
	Tags     domain.TagList `json:"tags,omitempty" doc:"Tags, string or array accepted"`
	Category string         `json:"category,omitempty" validate:"omitempty,max=100" doc:"Category slug, unknown slugs are stored as uncategorized"`
	Size     string         `json:"size,omitempty" validate:"omitempty,max=20" doc:"Size variant, defaults to 24"`
	Property string         `json:"property,omitempty" validate:"omitempty,max=50" doc:"Style variant, defaults to outline"`
	Memo     string         `json:"memo,omitempty" validate:"omitempty,max=500" doc:"Optional change memo"`
}

// CreateIconInput wraps the create request for Huma.
type CreateIconInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          CreateIconRequest
}

// UpdateIconRequest is the request body for a partial icon update.
type UpdateIconRequest struct {
	Name     *string         `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"New name, re-derives the slug"`
	SVG      *string         `json:"svg,omitempty" validate:"omitempty,min=1" doc:"New SVG markup"`
	Tags     *domain.TagList `json:"tags,omitempty" doc:"Replacement tags"`
	Category *string         `json:"category,omitempty" validate:"omitempty,max=100" doc:"New category slug, empty clears it"`
	Size     *string         `json:"size,omitempty" validate:"omitempty,min=1,max=20" doc:"New size variant"`
	Property *string         `json:"property,omitempty" validate:"omitempty,min=1,max=50" doc:"New style variant"`
	Memo     string          `json:"memo,omitempty" validate:"omitempty,max=500" doc:"Optional change memo"`
}

// UpdateIconInput wraps the update request for Huma.
type UpdateIconInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Icon ID"`
	Body          UpdateIconRequest
}

// MemoRequest carries an optional change memo.
type MemoRequest struct {
	Memo string `json:"memo,omitempty" validate:"omitempty,max=500" doc:"Optional change memo"`
}

// DeleteIconInput wraps the delete request for Huma.
type DeleteIconInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Icon ID"`
	Body          *MemoRequest
}

// RestoreIconInput wraps the restore request for Huma.
type RestoreIconInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Icon ID"`
	Body          *MemoRequest
}

// DeprecateIconRequest toggles the deprecation flag.
type DeprecateIconRequest struct {
	IsDeprecated *bool  `json:"is_deprecated,omitempty" doc:"Desired flag state, defaults to true"`
	Memo         string `json:"memo,omitempty" validate:"omitempty,max=500" doc:"Optional change memo"`
}

// DeprecateIconInput wraps the deprecate request for Huma.
type DeprecateIconInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Icon ID"`
	Body          *DeprecateIconRequest
}

// FigmaIconRequest is one icon pushed by the Figma plugin.
type FigmaIconRequest struct {
	Name     string         `json:"name" validate:"required,max=200" doc:"Source name from Figma"`
	SVG      string         `json:"svg" validate:"required" doc:"SVG markup"`
	Tags     domain.TagList `json:"tags,omitempty" doc:"Tags, string or array accepted"`
	Category string         `json:"category,omitempty" validate:"omitempty,max=100" doc:"Category slug"`
	Size     string         `json:"size,omitempty" validate:"omitempty,max=20" doc:"Size variant, defaults to 24"`
	Property string         `json:"property,omitempty" validate:"omitempty,max=50" doc:"Style variant, defaults to outline"`
	Mode     string         `json:"mode,omitempty" validate:"omitempty,max=50" doc:"FORCE_UPDATE skips matching an existing live icon"`
	Memo     string         `json:"memo,omitempty" validate:"omitempty,max=500" doc:"Optional change memo"`
}

// FigmaUpsertInput wraps the plugin upsert request for Huma.
type FigmaUpsertInput struct {
	Authorization string `header:"Authorization" doc:"Static plugin token"`
	Body          FigmaIconRequest
}

// FigmaUpsertOutput wraps the upsert response. Status is 201 when the icon
// was created and 200 when an existing icon was updated.
type FigmaUpsertOutput struct {
	Status int
	Body   IconResponse
}

// === Handlers ===

func (s *Server) handleListIcons(ctx context.Context, input *ListIconsInput) (*ListIconsOutput, error) {
	icons, err := s.services.Icon.List(ctx, store.IconFilter{
		Search:            input.Search,
		Category:          input.Category,
		IncludeDeprecated: input.IncludeDeprecated,
		IncludeDeleted:    input.IncludeDeleted,
	})
	if err != nil {
		return nil, err
	}

	out := make([]IconResponse, 0, len(icons))
	for _, icon := range icons {
		out = append(out, mapIcon(icon))
	}

	return &ListIconsOutput{Body: out}, nil
}

func (s *Server) handleGetIcon(ctx context.Context, input *GetIconInput) (*IconOutput, error) {
	icon, err := s.services.Icon.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &IconOutput{Body: mapIcon(icon)}, nil
}

func (s *Server) handleGetIconHistory(ctx context.Context, input *GetIconInput) (*IconHistoryOutput, error) {
	versions, err := s.services.Icon.History(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]IconVersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, mapIconVersion(v))
	}

	return &IconHistoryOutput{Body: out}, nil
}

func (s *Server) handleExportIcons(ctx context.Context, _ *struct{}) (*ExportIconsOutput, error) {
	icons, err := s.services.Icon.Export(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ExportIconResponse, 0, len(icons))
	for _, icon := range icons {
		out = append(out, ExportIconResponse{
			ID:           icon.ID,
			Name:         icon.Name,
			Slug:         icon.Slug,
			SVG:          icon.SVG,
			Tags:         icon.Tags,
			Category:     icon.Category,
			Size:         icon.Size,
			Property:     icon.Property,
			IsDeprecated: icon.IsDeprecated,
		})
	}

	return &ExportIconsOutput{Body: out}, nil
}

func (s *Server) handleCreateIcon(ctx context.Context, input *CreateIconInput) (*IconOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	icon, err := s.services.Icon.Create(ctx, service.CreateIconRequest{
		Name:     input.Body.Name,
		SVG:      input.Body.SVG,
		Tags:     input.Body.Tags,
		Category: input.Body.Category,
		Size:     input.Body.Size,
		Property: input.Body.Property,
		Memo:     input.Body.Memo,
	}, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &IconOutput{Body: mapIcon(icon)}, nil
}

func (s *Server) handleUpdateIcon(ctx context.Context, input *UpdateIconInput) (*IconOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	icon, err := s.services.Icon.Update(ctx, input.ID, service.UpdateIconRequest{
		Name:     input.Body.Name,
		SVG:      input.Body.SVG,
		Tags:     input.Body.Tags,
		Category: input.Body.Category,
		Size:     input.Body.Size,
		Property: input.Body.Property,
		Memo:     input.Body.Memo,
	}, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &IconOutput{Body: mapIcon(icon)}, nil
}

func (s *Server) handleDeleteIcon(ctx context.Context, input *DeleteIconInput) (*MessageOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var memo string
	if input.Body != nil {
		memo = input.Body.Memo
	}

	if err := s.services.Icon.SoftDelete(ctx, input.ID, memo, claims.UserID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Icon deleted"}}, nil
}

func (s *Server) handleRestoreIcon(ctx context.Context, input *RestoreIconInput) (*IconOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var memo string
	if input.Body != nil {
		memo = input.Body.Memo
	}

	icon, err := s.services.Icon.Restore(ctx, input.ID, memo, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &IconOutput{Body: mapIcon(icon)}, nil
}

func (s *Server) handleDeprecateIcon(ctx context.Context, input *DeprecateIconInput) (*IconOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	deprecated := true
	var memo string
	if input.Body != nil {
		if input.Body.IsDeprecated != nil {
			deprecated = *input.Body.IsDeprecated
		}
		memo = input.Body.Memo
	}

	icon, err := s.services.Icon.Deprecate(ctx, input.ID, deprecated, memo, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &IconOutput{Body: mapIcon(icon)}, nil
}

func (s *Server) handleUpsertIconFromFigma(ctx context.Context, input *FigmaUpsertInput) (*FigmaUpsertOutput, error) {
	if err := s.authenticatePlugin(input.Authorization); err != nil {
		return nil, err
	}

	icon, created, err := s.services.Icon.UpsertFromFigma(ctx, service.FigmaUpsertRequest{
		Name:     input.Body.Name,
		SVG:      input.Body.SVG,
		Tags:     input.Body.Tags,
		Category: input.Body.Category,
		Size:     input.Body.Size,
		Property: input.Body.Property,
		Mode:     input.Body.Mode,
		Memo:     input.Body.Memo,
	}, "figma-plugin")
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	return &FigmaUpsertOutput{Status: status, Body: mapIcon(icon)}, nil
}

// === Helpers ===

func mapIcon(icon *domain.Icon) IconResponse {
	return IconResponse{
		ID:            icon.ID,
		Name:          icon.Name,
		Slug:          icon.Slug,
		SVG:           icon.SVG,
		Tags:          icon.Tags,
		Category:      icon.Category,
		Size:          icon.Size,
		Property:      icon.Property,
		LatestVersion: icon.LatestVersion,
		IsDeprecated:  icon.IsDeprecated,
		DeletedAt:     icon.DeletedAt,
		CreatedAt:     icon.CreatedAt,
		CreatedBy:     icon.CreatedBy,
		UpdatedAt:     icon.UpdatedAt,
		UpdatedBy:     icon.UpdatedBy,
	}
}

func mapIconVersion(v *domain.IconVersion) IconVersionResponse {
	return IconVersionResponse{
		ID:         v.ID,
		IconID:     v.IconID,
		Version:    v.Version,
		Name:       v.Name,
		SVG:        v.SVG,
		Tags:       v.Tags,
		Category:   v.Category,
		Size:       v.Size,
		Property:   v.Property,
		ChangeType: string(v.ChangeType),
		Memo:       v.Memo,
		CreatedAt:  v.CreatedAt,
		CreatedBy:  v.CreatedBy,
	}
}
