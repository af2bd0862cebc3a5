// Package catalog loads media catalogs from JSON files and builds the
// profile text that gets embedded for each item.
package catalog

import (
	"strings"

	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/pkg/utils"
)

// descriptionSnippet is how much of the free-text description contributes
// to the profile. Genres/tags/keywords carry most of the semantic weight;
// the snippet adds context without drowning them.
const descriptionSnippet = 200

// ProfileText builds the weighted text representation of an item for
// embedding. Higher-confidence attributes are repeated so they pull the
// embedding harder: genres twice, ranked tags one to three times depending
// on rank, flat keywords twice.
func ProfileText(item *models.MediaItem) string {
	var parts []string

	for _, genre := range item.Genres {
		parts = append(parts, genre, genre)
	}

	for _, tag := range item.Tags {
		switch {
		case tag.Rank >= 80:
			parts = append(parts, tag.Name, tag.Name, tag.Name)
			if tag.Description != "" {
				parts = append(parts, tag.Description)
			}
		case tag.Rank >= 60:
			parts = append(parts, tag.Name, tag.Name)
		default:
			parts = append(parts, tag.Name)
		}
	}

	for _, kw := range item.Keywords {
		parts = append(parts, kw, kw)
	}

	if item.Description != "" {
		clean := utils.StripHTML(item.Description)
		if len(clean) > descriptionSnippet {
			clean = clean[:descriptionSnippet]
		}
		parts = append(parts, clean)
	}

	return strings.Join(parts, " . ")
}
