// Package store defines the persistence interface for the icon library.
package store

import (
	"context"
	"errors"

	"github.com/glyphkit/glyphkit-server/internal/domain"
)

// Sentinel errors returned by store implementations. The service layer maps
// these onto the domain error taxonomy.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

// IconFilter narrows ListIcons results. Zero value lists the default view:
// live, non-deprecated icons.
type IconFilter struct {
	// Search matches name or slug by substring, case-insensitive.
	Search string
	// Category filters by exact category slug.
	Category string
	// IncludeDeprecated keeps deprecated icons in the result.
	IncludeDeprecated bool
	// IncludeDeleted keeps soft-deleted icons in the result.
	IncludeDeleted bool
}

// Store is the persistence interface consumed by the service layer.
// All mutating icon operations write the icon row and its version row in a
// single transaction.
type Store interface {
	// Icons
	CreateIcon(ctx context.Context, icon *domain.Icon, version *domain.IconVersion) error
	UpdateIcon(ctx context.Context, icon *domain.Icon, version *domain.IconVersion) error
	GetIcon(ctx context.Context, id string) (*domain.Icon, error)
	GetLiveIconByIdentity(ctx context.Context, name, size, property string) (*domain.Icon, error)
	ListIcons(ctx context.Context, filter IconFilter) ([]*domain.Icon, error)
	ListIconVersions(ctx context.Context, iconID string) ([]*domain.IconVersion, error)
	ExportIcons(ctx context.Context) ([]*domain.Icon, error)
	CountLiveIconsByCategory(ctx context.Context, categorySlug string) (int, error)

	// Categories
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	Close() error
}
