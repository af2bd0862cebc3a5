// Package models defines core data structures for catalog items, queries, and recommendations.
package models

import (
	"fmt"
	"time"
)

// Category is the media category of a catalog item.
type Category string

const (
	CategoryMovie Category = "movie"
	CategoryMusic Category = "music"
	CategoryAnime Category = "anime"
	CategoryManga Category = "manga"
)

// KnownCategories lists the categories shipped with the catalog loaders.
// The set is open: items with other categories are stored and ranked as-is.
var KnownCategories = []Category{CategoryMovie, CategoryMusic, CategoryAnime, CategoryManga}

// Tag is a ranked descriptive tag (AniList-style; rank 0-100).
type Tag struct {
	Name        string `json:"name"`
	Rank        int    `json:"rank,omitempty"`
	Description string `json:"description,omitempty"`
}

// MediaItem represents one catalog entry. Items are immutable once loaded;
// the description (via catalog.ProfileText) is what gets embedded.
type MediaItem struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Category    Category  `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Genres      []string  `json:"genres,omitempty" db:"genres"`
	Tags        []Tag     `json:"tags,omitempty" db:"tags"`
	Keywords    []string  `json:"keywords,omitempty" db:"keywords"`
	Year        string    `json:"year,omitempty" db:"year"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
}

// Validate checks that the item has the fields required for indexing.
func (m *MediaItem) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("item has no id")
	}
	if m.Title == "" {
		return fmt.Errorf("item %s has no title", m.ID)
	}
	if m.Category == "" {
		return fmt.Errorf("item %s has no category", m.ID)
	}
	return nil
}
