package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glyphkit/glyphkit-server/internal/domain"
	domainerrors "github.com/glyphkit/glyphkit-server/internal/errors"
	"github.com/glyphkit/glyphkit-server/internal/id"
	"github.com/glyphkit/glyphkit-server/internal/store"
)

// ModeForceUpdate bypasses the update branch of the external upsert and
// forces the create path.
const ModeForceUpdate = "FORCE_UPDATE"

// IconService manages icons and their version history. Every mutation writes
// the icon row and a version row in one store transaction.
type IconService struct {
	store  store.Store
	logger *slog.Logger
}

// NewIconService creates a new icon service.
func NewIconService(store store.Store, logger *slog.Logger) *IconService {
	return &IconService{
		store:  store,
		logger: logger,
	}
}

// CreateIconRequest contains the fields for a new icon.
type CreateIconRequest struct {
	Name     string         `json:"name" validate:"required,max=200"`
	SVG      string         `json:"svg" validate:"required"`
	Tags     domain.TagList `json:"tags"`
	Category string         `json:"category" validate:"max=100"`
	Size     string         `json:"size" validate:"max=20"`
	Property string         `json:"property" validate:"max=50"`
	Memo     string         `json:"memo" validate:"max=500"`
}

// UpdateIconRequest contains the partial update fields for an icon.
// Nil fields are left unchanged.
type UpdateIconRequest struct {
	Name     *string         `json:"name" validate:"omitempty,min=1,max=200"`
	SVG      *string         `json:"svg" validate:"omitempty,min=1"`
	Tags     *domain.TagList `json:"tags"`
	Category *string         `json:"category" validate:"omitempty,max=100"`
	Size     *string         `json:"size" validate:"omitempty,min=1,max=20"`
	Property *string         `json:"property" validate:"omitempty,min=1,max=50"`
	Memo     string          `json:"memo" validate:"max=500"`
}

// FigmaUpsertRequest carries one icon pushed from the Figma plugin.
type FigmaUpsertRequest struct {
	Name     string         `json:"name" validate:"required,max=200"`
	SVG      string         `json:"svg" validate:"required"`
	Tags     domain.TagList `json:"tags"`
	Category string         `json:"category" validate:"max=100"`
	Size     string         `json:"size" validate:"max=20"`
	Property string         `json:"property" validate:"max=50"`
	Mode     string         `json:"mode" validate:"max=50"`
	Memo     string         `json:"memo" validate:"max=500"`
}

// resolveCategory validates a category slug against the taxonomy. Unknown
// slugs are coerced to uncategorized rather than rejected, so plugin pushes
// referencing a category that was deleted server-side still succeed.
func (s *IconService) resolveCategory(ctx context.Context, slug string) (string, error) {
	if slug == "" {
		return "", nil
	}
	_, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if s.logger != nil {
				s.logger.Warn("unknown category on icon, storing as uncategorized", "category", slug)
			}
			return "", nil
		}
		return "", fmt.Errorf("resolve category: %w", err)
	}
	return slug, nil
}

// newVersion snapshots an icon into a version row with a fresh ID.
func newVersion(icon *domain.Icon, changeType domain.ChangeType, memo, by string) (*domain.IconVersion, error) {
	versionID, err := id.Generate("icv")
	if err != nil {
		return nil, fmt.Errorf("generate version ID: %w", err)
	}
	v := icon.Snapshot(changeType, by)
	v.ID = versionID
	v.Memo = memo
	return v, nil
}

// identityConflict is the error returned when a mutation would collide with
// a live (name, size, property) identity.
func identityConflict(icon *domain.Icon) error {
	return domainerrors.Conflictf("icon %q already exists with size %s and property %s",
		icon.Name, icon.Size, icon.Property)
}

// Create adds a new icon with version 1 and a CREATE history row.
func (s *IconService) Create(ctx context.Context, req CreateIconRequest, by string) (*domain.Icon, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	size := req.Size
	if size == "" {
		size = domain.DefaultSize
	}
	property := req.Property
	if property == "" {
		property = domain.DefaultProperty
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	iconID, err := id.Generate("icn")
	if err != nil {
		return nil, fmt.Errorf("generate icon ID: %w", err)
	}

	now := time.Now()
	icon := &domain.Icon{
		ID:            iconID,
		Name:          req.Name,
		Slug:          domain.Slugify(req.Name),
		SVG:           req.SVG,
		Tags:          req.Tags,
		Category:      category,
		Size:          size,
		Property:      property,
		LatestVersion: 1,
		CreatedAt:     now,
		CreatedBy:     by,
		UpdatedAt:     now,
		UpdatedBy:     by,
	}

	version, err := newVersion(icon, domain.ChangeCreate, req.Memo, by)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateIcon(ctx, icon, version); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, identityConflict(icon)
		}
		return nil, fmt.Errorf("create icon: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("icon created",
			"icon_id", iconID,
			"name", icon.Name,
			"size", icon.Size,
			"property", icon.Property,
		)
	}
	return icon, nil
}

// Update applies a partial update, bumps latest_version and appends an
// UPDATE history row. Soft-deleted icons cannot be updated.
func (s *IconService) Update(ctx context.Context, iconID string, req UpdateIconRequest, by string) (*domain.Icon, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	icon, err := s.getLive(ctx, iconID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		icon.Name = *req.Name
		icon.Slug = domain.Slugify(*req.Name)
	}
	if req.SVG != nil {
		icon.SVG = *req.SVG
	}
	if req.Tags != nil {
		icon.Tags = *req.Tags
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		icon.Category = category
	}
	if req.Size != nil {
		icon.Size = *req.Size
	}
	if req.Property != nil {
		icon.Property = *req.Property
	}

	icon.LatestVersion++
	icon.Touch(by)

	version, err := newVersion(icon, domain.ChangeUpdate, req.Memo, by)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateIcon(ctx, icon, version); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, identityConflict(icon)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("icon not found")
		}
		return nil, fmt.Errorf("update icon: %w", err)
	}

	return icon, nil
}

// SoftDelete marks an icon deleted and appends a DELETE history row carrying
// the pre-delete snapshot. latest_version is not touched.
func (s *IconService) SoftDelete(ctx context.Context, iconID, memo, by string) error {
	icon, err := s.getLive(ctx, iconID)
	if err != nil {
		return err
	}

	version, err := newVersion(icon, domain.ChangeDelete, memo, by)
	if err != nil {
		return err
	}

	now := time.Now()
	icon.DeletedAt = &now
	icon.Touch(by)

	if err := s.store.UpdateIcon(ctx, icon, version); err != nil {
		return fmt.Errorf("delete icon: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("icon deleted", "icon_id", iconID, "name", icon.Name)
	}
	return nil
}

// Restore clears a soft delete and appends a RESTORE history row. If another
// live icon has taken the identity in the meantime, the restore conflicts.
func (s *IconService) Restore(ctx context.Context, iconID, memo, by string) (*domain.Icon, error) {
	icon, err := s.Get(ctx, iconID)
	if err != nil {
		return nil, err
	}
	if !icon.IsDeleted() {
		return nil, domainerrors.Conflict("icon is not deleted")
	}

	icon.DeletedAt = nil
	icon.Touch(by)

	version, err := newVersion(icon, domain.ChangeRestore, memo, by)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateIcon(ctx, icon, version); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, identityConflict(icon)
		}
		return nil, fmt.Errorf("restore icon: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("icon restored", "icon_id", iconID, "name", icon.Name)
	}
	return icon, nil
}

// Deprecate sets the deprecation flag and appends a DEPRECATE history row.
// Both directions of the toggle use the same change type.
func (s *IconService) Deprecate(ctx context.Context, iconID string, deprecated bool, memo, by string) (*domain.Icon, error) {
	icon, err := s.getLive(ctx, iconID)
	if err != nil {
		return nil, err
	}

	icon.IsDeprecated = deprecated
	icon.Touch(by)

	version, err := newVersion(icon, domain.ChangeDeprecate, memo, by)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateIcon(ctx, icon, version); err != nil {
		return nil, fmt.Errorf("deprecate icon: %w", err)
	}

	return icon, nil
}

// UpsertFromFigma merges one icon pushed by the plugin. A live icon with the
// same (name, size, property) identity takes the update path unless the
// plugin forces a create; anything else is created fresh.
// Returns the icon and whether it was created.
func (s *IconService) UpsertFromFigma(ctx context.Context, req FigmaUpsertRequest, by string) (*domain.Icon, bool, error) {
	if err := validate.Validate(req); err != nil {
		return nil, false, err
	}

	size := req.Size
	if size == "" {
		size = domain.DefaultSize
	}
	property := req.Property
	if property == "" {
		property = domain.DefaultProperty
	}

	existing, err := s.store.GetLiveIconByIdentity(ctx, req.Name, size, property)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup icon identity: %w", err)
	}

	if existing != nil && req.Mode != ModeForceUpdate {
		category := existing.Category
		icon, err := s.Update(ctx, existing.ID, UpdateIconRequest{
			SVG:      &req.SVG,
			Tags:     &req.Tags,
			Category: &req.Category,
			Memo:     req.Memo,
		}, by)
		if err != nil {
			return nil, false, err
		}
		if s.logger != nil && icon.Category != category {
			s.logger.Info("icon category changed by plugin push",
				"icon_id", icon.ID, "from", category, "to", icon.Category)
		}
		return icon, false, nil
	}

	icon, err := s.Create(ctx, CreateIconRequest{
		Name:     req.Name,
		SVG:      req.SVG,
		Tags:     req.Tags,
		Category: req.Category,
		Size:     size,
		Property: property,
		Memo:     req.Memo,
	}, by)
	if err != nil {
		return nil, false, err
	}
	return icon, true, nil
}

// Get retrieves an icon by ID. Soft-deleted icons are still readable so
// their history and restore flows work.
func (s *IconService) Get(ctx context.Context, iconID string) (*domain.Icon, error) {
	icon, err := s.store.GetIcon(ctx, iconID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("icon not found")
		}
		return nil, fmt.Errorf("get icon: %w", err)
	}
	return icon, nil
}

// getLive retrieves an icon for mutation; soft-deleted icons behave as
// missing on mutation paths other than restore.
func (s *IconService) getLive(ctx context.Context, iconID string) (*domain.Icon, error) {
	icon, err := s.Get(ctx, iconID)
	if err != nil {
		return nil, err
	}
	if icon.IsDeleted() {
		return nil, domainerrors.NotFound("icon not found")
	}
	return icon, nil
}

// List returns icons matching the filter.
func (s *IconService) List(ctx context.Context, filter store.IconFilter) ([]*domain.Icon, error) {
	icons, err := s.store.ListIcons(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list icons: %w", err)
	}
	return icons, nil
}

// History returns an icon's version rows, newest first.
func (s *IconService) History(ctx context.Context, iconID string) ([]*domain.IconVersion, error) {
	versions, err := s.store.ListIconVersions(ctx, iconID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("icon not found")
		}
		return nil, fmt.Errorf("list icon versions: %w", err)
	}
	return versions, nil
}

// Export returns all non-deleted icons in the stable build order.
func (s *IconService) Export(ctx context.Context) ([]*domain.Icon, error) {
	icons, err := s.store.ExportIcons(ctx)
	if err != nil {
		return nil, fmt.Errorf("export icons: %w", err)
	}
	return icons, nil
}
