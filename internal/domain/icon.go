// Package domain contains the core entities of the icon library.
package domain

import (
	"strings"
	"time"
)

// Default variant tokens applied when a caller omits them and when reading
// legacy rows that predate the size/property columns.
const (
	DefaultSize     = "24"
	DefaultProperty = "outline"
)

// ChangeType classifies one icon state transition in the version history.
type ChangeType string

const (
	ChangeCreate    ChangeType = "CREATE"
	ChangeUpdate    ChangeType = "UPDATE"
	ChangeDelete    ChangeType = "DELETE"
	ChangeRestore   ChangeType = "RESTORE"
	ChangeDeprecate ChangeType = "DEPRECATE"
)

// Icon is the current, mutable projection of one icon asset variant.
// Identity among live (non-deleted) icons is the (Name, Size, Property)
// tuple; Slug is kept for backward compatibility and is no longer unique.
type Icon struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	SVG           string     `json:"svg"`
	Tags          TagList    `json:"tags"`
	Category      string     `json:"category,omitempty"` // category slug, empty = uncategorized
	Size          string     `json:"size"`
	Property      string     `json:"property"`
	LatestVersion int        `json:"latest_version"`
	IsDeprecated  bool       `json:"is_deprecated"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     string     `json:"created_by"`
	UpdatedAt     time.Time  `json:"updated_at"`
	UpdatedBy     string     `json:"updated_by"`
}

// IsDeleted reports whether the icon is soft-deleted.
func (i *Icon) IsDeleted() bool {
	return i.DeletedAt != nil
}

// Touch records a mutation by the given user.
func (i *Icon) Touch(by string) {
	i.UpdatedAt = time.Now()
	i.UpdatedBy = by
}

// Snapshot captures the icon's current mutable fields as a version record
// of the given change type. Version carries the icon's LatestVersion as-is;
// callers bump LatestVersion first for content changes.
func (i *Icon) Snapshot(changeType ChangeType, by string) *IconVersion {
	return &IconVersion{
		IconID:     i.ID,
		Version:    i.LatestVersion,
		Name:       i.Name,
		SVG:        i.SVG,
		Tags:       i.Tags,
		Category:   i.Category,
		Size:       i.Size,
		Property:   i.Property,
		ChangeType: changeType,
		CreatedAt:  time.Now(),
		CreatedBy:  by,
	}
}

// Slugify derives an icon slug from its source name: a leading "icon/"
// segment is stripped and remaining path separators become hyphens.
// "icon/arrow/right" → "arrow-right".
func Slugify(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "icon/"), "/", "-")
}

// IconVersion is an immutable audit record of one icon state transition.
// Rows are append-only: written in the same transaction as the icon
// mutation they describe and never changed afterwards.
//
// Version carries the icon's LatestVersion at the time the row was written.
// Content changes (CREATE, UPDATE) increment it; lifecycle transitions
// (DELETE, RESTORE, DEPRECATE) do not, so lifecycle rows may repeat a
// version number already used by a content row.
type IconVersion struct {
	ID         string     `json:"id"`
	IconID     string     `json:"icon_id"`
	Version    int        `json:"version"`
	Name       string     `json:"name"`
	SVG        string     `json:"svg"`
	Tags       TagList    `json:"tags"`
	Category   string     `json:"category,omitempty"`
	Size       string     `json:"size"`
	Property   string     `json:"property"`
	ChangeType ChangeType `json:"change_type"`
	Memo       string     `json:"memo,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  string     `json:"created_by"`
}
