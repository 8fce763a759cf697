package domain

import "time"

// Category is a classification tag referenced by Icon.Category via its slug.
// Name and Slug are both unique. Categories are hard-deleted, but only when
// no live icon references them.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// Touch records a mutation by the given user.
func (c *Category) Touch(by string) {
	c.UpdatedAt = time.Now()
	c.UpdatedBy = by
}
