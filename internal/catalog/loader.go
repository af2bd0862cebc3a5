package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/hyperjump/susume/internal/models"
)

// categoryFiles maps the JSON files a data directory may contain to the
// category assigned to their items. Missing files are skipped.
var categoryFiles = []struct {
	name     string
	category models.Category
}{
	{"movies.json", models.CategoryMovie},
	{"music.json", models.CategoryMusic},
	{"anime_list.json", models.CategoryAnime},
	{"manga_list.json", models.CategoryManga},
}

// rawTitle accepts either a plain string or the AniList
// {"english": ..., "romaji": ...} object.
type rawTitle struct {
	value string
}

func (t *rawTitle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.value = s
		return nil
	}
	var obj struct {
		English string `json:"english"`
		Romaji  string `json:"romaji"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("title is neither string nor object: %w", err)
	}
	if obj.English != "" {
		t.value = obj.English
	} else {
		t.value = obj.Romaji
	}
	return nil
}

// rawItem is the on-disk item shape. TMDb and AniList exports use
// different field names for the same things; the fallbacks below unify them.
type rawItem struct {
	ID          json.Number  `json:"id"`
	TMDbID      json.Number  `json:"tmdb_id"`
	Title       rawTitle     `json:"title"`
	Description string       `json:"description"`
	Overview    string       `json:"overview"`
	Genres      []string     `json:"genres"`
	Tags        []models.Tag `json:"tags"`
	Keywords    []string     `json:"keywords"`
	Year        string       `json:"year"`
	SeasonYear  json.Number  `json:"seasonYear"`
	ReleaseDate string       `json:"release_date"`
}

// Load reads all known catalog files under dir and returns the combined
// catalog. Items without an ID get a generated one, prefixed with the
// category so generated IDs stay unique across files.
func Load(dir string) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	for _, cf := range categoryFiles {
		path := filepath.Join(dir, cf.name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", cf.name, err)
		}
		loaded, err := parseFile(data, cf.category)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", cf.name, err)
		}
		items = append(items, loaded...)
	}
	return items, nil
}

// parseFile decodes one catalog file. Movie exports sometimes wrap the list
// in {"movies": [...]}; both shapes are accepted for every category.
func parseFile(data []byte, category models.Category) ([]*models.MediaItem, error) {
	var raws []rawItem
	if err := json.Unmarshal(data, &raws); err != nil {
		var wrapped map[string][]rawItem
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, err
		}
		for _, list := range wrapped {
			raws = append(raws, list...)
		}
	}
	items := make([]*models.MediaItem, 0, len(raws))
	for _, raw := range raws {
		item, err := raw.toItem(category)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *rawItem) toItem(category models.Category) (*models.MediaItem, error) {
	id := r.ID.String()
	if id == "" {
		id = r.TMDbID.String()
	}
	if id == "" {
		id = uuid.New().String()
	} else {
		id = string(category) + ":" + id
	}

	desc := r.Description
	if desc == "" {
		desc = r.Overview
	}

	year := r.Year
	if year == "" && r.SeasonYear.String() != "" {
		year = r.SeasonYear.String()
	}
	if year == "" && len(r.ReleaseDate) >= 4 {
		year = r.ReleaseDate[:4]
	}
	if _, err := strconv.Atoi(year); year != "" && err != nil {
		year = ""
	}

	item := &models.MediaItem{
		ID:          id,
		Title:       r.Title.value,
		Category:    category,
		Description: desc,
		Genres:      r.Genres,
		Tags:        r.Tags,
		Keywords:    r.Keywords,
		Year:        year,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}
