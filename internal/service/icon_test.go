package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphkit/glyphkit-server/internal/domain"
	domainerrors "github.com/glyphkit/glyphkit-server/internal/errors"
	"github.com/glyphkit/glyphkit-server/internal/store"
)

func TestIconCreate_Defaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{
		Name: "icon/arrow/right",
		SVG:  "<svg/>",
		Tags: domain.TagList{"arrow"},
	}, "usr-1")
	require.NoError(t, err)

	assert.Equal(t, "arrow-right", icon.Slug)
	assert.Equal(t, domain.DefaultSize, icon.Size)
	assert.Equal(t, domain.DefaultProperty, icon.Property)
	assert.Equal(t, 1, icon.LatestVersion)
	assert.Equal(t, "usr-1", icon.CreatedBy)

	versions, err := env.icons.History(ctx, icon.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.ChangeCreate, versions[0].ChangeType)
	assert.Equal(t, 1, versions[0].Version)
}

func TestIconCreate_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.icons.Create(context.Background(), CreateIconRequest{Name: "icon/x"}, "usr-1")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestIconCreate_UnknownCategoryCoerced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedCategory(t, "Navigation", "navigation")

	known, err := env.icons.Create(ctx, CreateIconRequest{
		Name: "icon/compass", SVG: "<svg/>", Category: "navigation",
	}, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, "navigation", known.Category)

	unknown, err := env.icons.Create(ctx, CreateIconRequest{
		Name: "icon/ghost", SVG: "<svg/>", Category: "spooky",
	}, "usr-1")
	require.NoError(t, err)
	assert.Empty(t, unknown.Category)
}

func TestIconCreate_DuplicateIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	_, err = env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	// Different variant of the same name is fine.
	_, err = env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>", Size: "16"}, "usr-1")
	require.NoError(t, err)
}

func TestIconUpdate_BumpsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg>v1</svg>"}, "usr-1")
	require.NoError(t, err)

	const updates = 3
	for i := 0; i < updates; i++ {
		svg := "<svg>next</svg>"
		icon, err = env.icons.Update(ctx, icon.ID, UpdateIconRequest{SVG: &svg}, "usr-2")
		require.NoError(t, err)
	}

	assert.Equal(t, updates+1, icon.LatestVersion)
	assert.Equal(t, "usr-2", icon.UpdatedBy)

	versions, err := env.icons.History(ctx, icon.ID)
	require.NoError(t, err)
	require.Len(t, versions, updates+1)
	assert.Equal(t, domain.ChangeUpdate, versions[0].ChangeType)
	assert.Equal(t, updates+1, versions[0].Version)
	assert.Equal(t, domain.ChangeCreate, versions[updates].ChangeType)
}

func TestIconUpdate_RenameDerivesSlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	name := "icon/house/front"
	icon, err = env.icons.Update(ctx, icon.ID, UpdateIconRequest{Name: &name}, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, "house-front", icon.Slug)
}

func TestIconUpdate_ConflictOnRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)
	other, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/house", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	name := "icon/home"
	_, err = env.icons.Update(ctx, other.ID, UpdateIconRequest{Name: &name}, "usr-1")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestIconDeleteRestore_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	require.NoError(t, env.icons.SoftDelete(ctx, icon.ID, "cleanup", "usr-1"))

	// Still readable by ID, excluded from the default list.
	got, err := env.icons.Get(ctx, icon.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	icons, err := env.icons.List(ctx, store.IconFilter{})
	require.NoError(t, err)
	assert.Empty(t, icons)

	// Mutations on a deleted icon behave as missing.
	svg := "<svg>v2</svg>"
	_, err = env.icons.Update(ctx, icon.ID, UpdateIconRequest{SVG: &svg}, "usr-1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	restored, err := env.icons.Restore(ctx, icon.ID, "", "usr-1")
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	assert.Equal(t, 1, restored.LatestVersion)

	versions, err := env.icons.History(ctx, icon.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, domain.ChangeRestore, versions[0].ChangeType)
	assert.Equal(t, domain.ChangeDelete, versions[1].ChangeType)
	assert.Equal(t, "cleanup", versions[1].Memo)
	// Lifecycle rows repeat the version number.
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, 1, versions[1].Version)
}

func TestIconRestore_NotDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	_, err = env.icons.Restore(ctx, icon.ID, "", "usr-1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestIconRestore_IdentityTaken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)
	require.NoError(t, env.icons.SoftDelete(ctx, icon.ID, "", "usr-1"))

	// The freed identity is reused by a new icon.
	_, err = env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	_, err = env.icons.Restore(ctx, icon.ID, "", "usr-1")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestIconDeprecate_Toggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	icon, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/home", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	icon, err = env.icons.Deprecate(ctx, icon.ID, true, "", "usr-1")
	require.NoError(t, err)
	assert.True(t, icon.IsDeprecated)
	assert.Equal(t, 1, icon.LatestVersion)

	// Hidden from the default list, visible when requested.
	icons, err := env.icons.List(ctx, store.IconFilter{})
	require.NoError(t, err)
	assert.Empty(t, icons)

	icons, err = env.icons.List(ctx, store.IconFilter{IncludeDeprecated: true})
	require.NoError(t, err)
	assert.Len(t, icons, 1)

	// Undeprecation uses the same change type.
	icon, err = env.icons.Deprecate(ctx, icon.ID, false, "", "usr-1")
	require.NoError(t, err)
	assert.False(t, icon.IsDeprecated)

	versions, err := env.icons.History(ctx, icon.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, domain.ChangeDeprecate, versions[0].ChangeType)
	assert.Equal(t, domain.ChangeDeprecate, versions[1].ChangeType)
}

func TestUpsertFromFigma_CreatesWhenMissing(t *testing.T) {
	env := newTestEnv(t)

	icon, created, err := env.icons.UpsertFromFigma(context.Background(), FigmaUpsertRequest{
		Name: "icon/home",
		SVG:  "<svg/>",
	}, "figma-plugin")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, icon.LatestVersion)
}

func TestUpsertFromFigma_UpdatesExistingIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, _, err := env.icons.UpsertFromFigma(ctx, FigmaUpsertRequest{
		Name: "icon/home", SVG: "<svg>v1</svg>",
	}, "figma-plugin")
	require.NoError(t, err)

	second, created, err := env.icons.UpsertFromFigma(ctx, FigmaUpsertRequest{
		Name: "icon/home", SVG: "<svg>v2</svg>", Tags: domain.TagList{"house"},
	}, "figma-plugin")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "<svg>v2</svg>", second.SVG)
	assert.Equal(t, 2, second.LatestVersion)
}

func TestUpsertFromFigma_ForceUpdateSkipsMerge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.icons.UpsertFromFigma(ctx, FigmaUpsertRequest{
		Name: "icon/home", SVG: "<svg/>",
	}, "figma-plugin")
	require.NoError(t, err)

	// Forcing the create path onto a live identity surfaces the conflict.
	_, _, err = env.icons.UpsertFromFigma(ctx, FigmaUpsertRequest{
		Name: "icon/home", SVG: "<svg/>", Mode: ModeForceUpdate,
	}, "figma-plugin")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestIconExport_ShapeAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/bell", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)
	_, err = env.icons.Create(ctx, CreateIconRequest{Name: "icon/arrow", SVG: "<svg/>", Size: "16"}, "usr-1")
	require.NoError(t, err)
	arrow24, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/arrow", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)

	deleted, err := env.icons.Create(ctx, CreateIconRequest{Name: "icon/gone", SVG: "<svg/>"}, "usr-1")
	require.NoError(t, err)
	require.NoError(t, env.icons.SoftDelete(ctx, deleted.ID, "", "usr-1"))

	icons, err := env.icons.Export(ctx)
	require.NoError(t, err)
	require.Len(t, icons, 3)

	assert.Equal(t, "16", icons[0].Size)
	assert.Equal(t, arrow24.ID, icons[1].ID)
	assert.Equal(t, "icon/bell", icons[2].Name)
}
