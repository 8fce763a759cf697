package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/glyphkit/glyphkit-server/internal/domain"
	"github.com/glyphkit/glyphkit-server/internal/store"
)

// iconColumns is the ordered list of columns selected in icon queries.
// Must match the scan order in scanIcon.
const iconColumns = `id, name, slug, svg, tags, category, size, property,
	latest_version, is_deprecated, deleted_at, created_at, created_by, updated_at, updated_by`

// scanIcon scans a sql.Row (or sql.Rows via its Scan method) into a domain.Icon.
func scanIcon(scanner interface{ Scan(dest ...any) error }) (*domain.Icon, error) {
	var i domain.Icon

	var (
		tags         sql.NullString
		category     sql.NullString
		size         sql.NullString
		property     sql.NullString
		isDeprecated int
		deletedAt    sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.SVG,
		&tags,
		&category,
		&size,
		&property,
		&i.LatestVersion,
		&isDeprecated,
		&deletedAt,
		&createdAt,
		&i.CreatedBy,
		&updatedAt,
		&i.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	// Tags are stored as JSON but legacy rows may hold comma-separated text.
	if tags.Valid {
		i.Tags = domain.ParseTags(tags.String)
	}
	if category.Valid {
		i.Category = category.String
	}

	// Legacy rows predate the size/property columns.
	i.Size = domain.DefaultSize
	if size.Valid && size.String != "" {
		i.Size = size.String
	}
	i.Property = domain.DefaultProperty
	if property.Valid && property.String != "" {
		i.Property = property.String
	}

	i.IsDeprecated = isDeprecated != 0

	// Parse timestamps.
	i.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	i.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	i.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &i, nil
}

// tagsValue serializes a TagList for storage. Empty lists store as NULL.
func tagsValue(tags domain.TagList) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal tags: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// insertIconVersion appends a version row inside an existing transaction.
func insertIconVersion(ctx context.Context, tx *sql.Tx, v *domain.IconVersion) error {
	tags, err := tagsValue(v.Tags)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO icon_versions (
			id, icon_id, version, name, svg, tags, category, size, property,
			change_type, memo, created_at, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID,
		v.IconID,
		v.Version,
		v.Name,
		v.SVG,
		tags,
		nullString(v.Category),
		v.Size,
		v.Property,
		string(v.ChangeType),
		nullString(v.Memo),
		formatTime(v.CreatedAt),
		v.CreatedBy,
	)
	return err
}

// CreateIcon inserts a new icon and its CREATE version row in one transaction.
// Returns store.ErrAlreadyExists when a live icon with the same
// (name, size, property) identity exists.
func (s *Store) CreateIcon(ctx context.Context, icon *domain.Icon, version *domain.IconVersion) error {
	tags, err := tagsValue(icon.Tags)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
		INSERT INTO icons (
			id, name, slug, svg, tags, category, size, property,
			latest_version, is_deprecated, deleted_at, created_at, created_by, updated_at, updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		icon.ID,
		icon.Name,
		icon.Slug,
		icon.SVG,
		tags,
		nullString(icon.Category),
		icon.Size,
		icon.Property,
		icon.LatestVersion,
		boolToInt(icon.IsDeprecated),
		nullTimeString(icon.DeletedAt),
		formatTime(icon.CreatedAt),
		icon.CreatedBy,
		formatTime(icon.UpdatedAt),
		icon.UpdatedBy,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if err := insertIconVersion(ctx, tx, version); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateIcon performs a full row update and appends the given version row in
// one transaction. The update covers lifecycle fields too, so soft delete,
// restore and deprecation all flow through here.
// Returns store.ErrNotFound if the icon does not exist and
// store.ErrAlreadyExists when the update would collide with a live identity.
func (s *Store) UpdateIcon(ctx context.Context, icon *domain.Icon, version *domain.IconVersion) error {
	tags, err := tagsValue(icon.Tags)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
		UPDATE icons SET
			name = ?,
			slug = ?,
			svg = ?,
			tags = ?,
			category = ?,
			size = ?,
			property = ?,
			latest_version = ?,
			is_deprecated = ?,
			deleted_at = ?,
			updated_at = ?,
			updated_by = ?
		WHERE id = ?`,
		icon.Name,
		icon.Slug,
		icon.SVG,
		tags,
		nullString(icon.Category),
		icon.Size,
		icon.Property,
		icon.LatestVersion,
		boolToInt(icon.IsDeprecated),
		nullTimeString(icon.DeletedAt),
		formatTime(icon.UpdatedAt),
		icon.UpdatedBy,
		icon.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := insertIconVersion(ctx, tx, version); err != nil {
		return err
	}

	return tx.Commit()
}

// GetIcon retrieves an icon by ID. Soft-deleted icons are still readable by
// ID so their history and restore flows work.
// Returns store.ErrNotFound if the icon does not exist.
func (s *Store) GetIcon(ctx context.Context, id string) (*domain.Icon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+iconColumns+` FROM icons WHERE id = ?`, id)

	i, err := scanIcon(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// GetLiveIconByIdentity retrieves the non-deleted icon with the given
// (name, size, property) identity. Legacy rows with NULL size or property
// match against the defaults.
// Returns store.ErrNotFound if no live icon has that identity.
func (s *Store) GetLiveIconByIdentity(ctx context.Context, name, size, property string) (*domain.Icon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+iconColumns+` FROM icons
		 WHERE name = ? AND COALESCE(size, ?) = ? AND COALESCE(property, ?) = ?
		   AND deleted_at IS NULL`,
		name, domain.DefaultSize, size, domain.DefaultProperty, property)

	i, err := scanIcon(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// ListIcons returns icons matching the filter, newest first.
// The default view excludes soft-deleted and deprecated icons.
func (s *Store) ListIcons(ctx context.Context, filter store.IconFilter) ([]*domain.Icon, error) {
	query := `SELECT ` + iconColumns + ` FROM icons WHERE 1=1`
	var args []any

	if !filter.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if !filter.IncludeDeprecated {
		query += ` AND is_deprecated = 0`
	}
	if filter.Search != "" {
		query += ` AND (name LIKE ? OR slug LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icons []*domain.Icon
	for rows.Next() {
		i, err := scanIcon(rows)
		if err != nil {
			return nil, err
		}
		icons = append(icons, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return icons, nil
}

// iconVersionColumns is the ordered list of columns selected in version
// queries. Must match the scan order in scanIconVersion.
const iconVersionColumns = `id, icon_id, version, name, svg, tags, category, size, property,
	change_type, memo, created_at, created_by`

// scanIconVersion scans a row into a domain.IconVersion.
func scanIconVersion(scanner interface{ Scan(dest ...any) error }) (*domain.IconVersion, error) {
	var v domain.IconVersion

	var (
		tags       sql.NullString
		category   sql.NullString
		size       sql.NullString
		property   sql.NullString
		changeType string
		memo       sql.NullString
		createdAt  string
	)

	err := scanner.Scan(
		&v.ID,
		&v.IconID,
		&v.Version,
		&v.Name,
		&v.SVG,
		&tags,
		&category,
		&size,
		&property,
		&changeType,
		&memo,
		&createdAt,
		&v.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if tags.Valid {
		v.Tags = domain.ParseTags(tags.String)
	}
	if category.Valid {
		v.Category = category.String
	}
	v.Size = domain.DefaultSize
	if size.Valid && size.String != "" {
		v.Size = size.String
	}
	v.Property = domain.DefaultProperty
	if property.Valid && property.String != "" {
		v.Property = property.String
	}
	v.ChangeType = domain.ChangeType(changeType)
	if memo.Valid {
		v.Memo = memo.String
	}
	v.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// ListIconVersions returns the full version history of an icon, newest first.
// Returns store.ErrNotFound if the icon does not exist.
func (s *Store) ListIconVersions(ctx context.Context, iconID string) ([]*domain.IconVersion, error) {
	// Distinguish "no history" from "no such icon".
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM icons WHERE id = ?`, iconID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+iconVersionColumns+` FROM icon_versions
		WHERE icon_id = ?
		ORDER BY version DESC, rowid DESC`, iconID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.IconVersion
	for rows.Next() {
		v, err := scanIconVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return versions, nil
}

// ExportIcons returns all non-deleted icons for the build pipeline, ordered
// by (name, size, property) so output is deterministic. Legacy NULL size and
// property are coalesced to the defaults in the query so ordering and output
// agree.
func (s *Store) ExportIcons(ctx context.Context) ([]*domain.Icon, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, svg, tags, category,
		       COALESCE(size, ?) AS size, COALESCE(property, ?) AS property,
		       latest_version, is_deprecated, deleted_at, created_at, created_by, updated_at, updated_by
		FROM icons
		WHERE deleted_at IS NULL
		ORDER BY name ASC, size ASC, property ASC`,
		domain.DefaultSize, domain.DefaultProperty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var icons []*domain.Icon
	for rows.Next() {
		i, err := scanIcon(rows)
		if err != nil {
			return nil, err
		}
		icons = append(icons, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return icons, nil
}

// CountLiveIconsByCategory counts non-deleted icons referencing the category slug.
func (s *Store) CountLiveIconsByCategory(ctx context.Context, categorySlug string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM icons WHERE category = ? AND deleted_at IS NULL`,
		categorySlug).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
