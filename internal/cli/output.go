// Package cli provides output formatting for the Susume CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/pkg/utils"
)

// OutputFormat is the format for recommendation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// categoryOrder fixes the section order for grouped output.
var categoryOrder = []models.Category{
	models.CategoryMovie,
	models.CategoryMusic,
	models.CategoryAnime,
	models.CategoryManga,
}

// WriteRecommendations writes a recommendation response to w in the given
// format.
func WriteRecommendations(w io.Writer, response *models.RecommendResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeRecommendationsText(w, response)
		return nil
	}
}

func writeRecommendationsText(w io.Writer, response *models.RecommendResponse) {
	src := response.Source
	fmt.Fprintf(w, "\nYou searched: %s (%s)\n", src.Title, src.Category)
	fmt.Fprintf(w, "Found %d matches in %dms\n", response.Total, response.QueryTime)

	if response.Grouped != nil {
		for _, cat := range categoryOrder {
			group, ok := response.Grouped[cat]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "\n  Similar %s\n", pluralCategory(cat))
			fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 50))
			for _, rec := range group {
				writeOneRecommendation(w, rec)
			}
		}
		// Categories outside the known set still get printed.
		for cat, group := range response.Grouped {
			if isKnownCategory(cat) {
				continue
			}
			fmt.Fprintf(w, "\n  Similar %s\n", cat)
			fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 50))
			for _, rec := range group {
				writeOneRecommendation(w, rec)
			}
		}
		return
	}

	fmt.Fprintln(w)
	for _, rec := range response.Results {
		writeOneRecommendation(w, rec)
	}
}

func writeOneRecommendation(w io.Writer, rec *models.Recommendation) {
	year := ""
	if rec.Item.Year != "" {
		year = " (" + rec.Item.Year + ")"
	}
	fmt.Fprintf(w, "  %d. %s%s  [%d%% match]\n", rec.Rank, rec.Item.Title, year, rec.MatchPercent)
	if len(rec.Item.Genres) > 0 {
		n := len(rec.Item.Genres)
		if n > 3 {
			n = 3
		}
		fmt.Fprintf(w, "     Genres: %s\n", strings.Join(rec.Item.Genres[:n], ", "))
	}
	if rec.Item.Description != "" {
		fmt.Fprintf(w, "     %s\n", utils.Truncate(utils.StripHTML(rec.Item.Description), 120))
	}
}

func pluralCategory(cat models.Category) string {
	switch cat {
	case models.CategoryMovie:
		return "Movies"
	case models.CategoryMusic:
		return "Music"
	case models.CategoryAnime:
		return "Anime"
	case models.CategoryManga:
		return "Manga"
	}
	return string(cat)
}

func isKnownCategory(cat models.Category) bool {
	for _, known := range models.KnownCategories {
		if cat == known {
			return true
		}
	}
	return false
}
