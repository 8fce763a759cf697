package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/glyphkit/glyphkit-server/internal/errors"
)

func TestCategoryCreate_DerivesSlug(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.categories.Create(context.Background(), CreateCategoryRequest{
		Name:        "User Interface",
		Description: "Chrome and controls.",
	}, "usr-1")
	require.NoError(t, err)

	assert.Equal(t, "user-interface", c.Slug)
	assert.Equal(t, "usr-1", c.CreatedBy)
}

func TestCategoryCreate_ExplicitSlug(t *testing.T) {
	env := newTestEnv(t)

	c, err := env.categories.Create(context.Background(), CreateCategoryRequest{
		Name: "Navigation",
		Slug: "nav",
	}, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, "nav", c.Slug)
}

func TestCategoryCreate_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.categories.Create(ctx, CreateCategoryRequest{Name: "Navigation"}, "usr-1")
	require.NoError(t, err)

	_, err = env.categories.Create(ctx, CreateCategoryRequest{Name: "Navigation"}, "usr-1")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestCategoryUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.categories.Create(ctx, CreateCategoryRequest{Name: "Navigation"}, "usr-1")
	require.NoError(t, err)

	name := "Wayfinding"
	updated, err := env.categories.Update(ctx, c.ID, UpdateCategoryRequest{Name: &name}, "usr-2")
	require.NoError(t, err)
	assert.Equal(t, "Wayfinding", updated.Name)
	// Slug is stable unless explicitly changed.
	assert.Equal(t, "navigation", updated.Slug)
	assert.Equal(t, "usr-2", updated.UpdatedBy)
}

func TestCategoryUpdate_SlugConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.categories.Create(ctx, CreateCategoryRequest{Name: "Navigation"}, "usr-1")
	require.NoError(t, err)
	c, err := env.categories.Create(ctx, CreateCategoryRequest{Name: "Action"}, "usr-1")
	require.NoError(t, err)

	slug := "navigation"
	_, err = env.categories.Update(ctx, c.ID, UpdateCategoryRequest{Slug: &slug}, "usr-1")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestCategoryDelete_InUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.categories.Create(ctx, CreateCategoryRequest{Name: "Navigation"}, "usr-1")
	require.NoError(t, err)

	for _, name := range []string{"icon/compass", "icon/map"} {
		_, err := env.icons.Create(ctx, CreateIconRequest{
			Name: name, SVG: "<svg/>", Category: c.Slug,
		}, "usr-1")
		require.NoError(t, err)
	}

	err = env.categories.Delete(ctx, c.ID)
	require.Error(t, err)

	var derr *domainerrors.Error
	require.True(t, domainerrors.As(err, &derr))
	assert.Equal(t, domainerrors.CodeConflict, derr.Code)
	details, ok := derr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, details["iconCount"])
}

func TestCategoryDelete_FreedBySoftDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.categories.Create(ctx, CreateCategoryRequest{Name: "Navigation"}, "usr-1")
	require.NoError(t, err)

	icon, err := env.icons.Create(ctx, CreateIconRequest{
		Name: "icon/compass", SVG: "<svg/>", Category: c.Slug,
	}, "usr-1")
	require.NoError(t, err)

	require.Error(t, env.categories.Delete(ctx, c.ID))

	// Soft-deleting the referencing icon frees the category.
	require.NoError(t, env.icons.SoftDelete(ctx, icon.ID, "", "usr-1"))
	require.NoError(t, env.categories.Delete(ctx, c.ID))

	_, err = env.categories.Get(ctx, c.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestCategoryList_Ordered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Toggle", "Action", "Navigation"} {
		_, err := env.categories.Create(ctx, CreateCategoryRequest{Name: name}, "usr-1")
		require.NoError(t, err)
	}

	categories, err := env.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Action", categories[0].Name)
	assert.Equal(t, "Navigation", categories[1].Name)
	assert.Equal(t, "Toggle", categories[2].Name)
}
