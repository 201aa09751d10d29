package domain

import (
	"strings"
	"time"
)

// RootCategory is the parent of top-level categories.
const RootCategory = "/"

// Category is a node of the two-level category tree. Path is derived from
// Name and Parent and is what listings reference.
type Category struct {
	ID        string
	Name      string
	Parent    string
	Path      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory builds a category under parent ("" or "/" for top level).
func NewCategory(name, parent string) *Category {
	now := time.Now().UTC()
	c := &Category{Name: strings.TrimSpace(name), CreatedAt: now, UpdatedAt: now}
	c.Parent, c.Path = CategoryPath(c.Name, parent)
	return c
}

// CategoryPath returns the normalised parent and the full path for a category.
//
//	CategoryPath("Bikes", "/")        -> "/", "/bikes"
//	CategoryPath("Road", "Bikes")     -> "/bikes", "/bikes/road"
//	CategoryPath("Road", "/bikes")    -> "/bikes", "/bikes/road"
func CategoryPath(name, parent string) (string, string) {
	name = strings.ToLower(strings.TrimSpace(name))
	parent = strings.Trim(strings.ToLower(strings.TrimSpace(parent)), "/")
	if parent == "" {
		return RootCategory, "/" + name
	}
	return "/" + parent, "/" + parent + "/" + name
}

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c.Parent == RootCategory
}

// CategoryTree is a top-level category with its direct children.
type CategoryTree struct {
	Category      *Category
	Subcategories []*Category
}

// CategoryUpdate lists the category fields an admin may change.
type CategoryUpdate struct {
	Name   *string
	Parent *string
}
