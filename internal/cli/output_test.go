package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/susume/internal/models"
)

func sampleResponse() *models.RecommendResponse {
	return &models.RecommendResponse{
		Source: &models.MediaItem{ID: "movie:1", Title: "Blade Runner 2049", Category: models.CategoryMovie},
		Results: []*models.Recommendation{
			{
				Item: &models.MediaItem{
					ID: "movie:2", Title: "Interstellar", Category: models.CategoryMovie,
					Year: "2014", Genres: []string{"Sci-Fi", "Drama", "Adventure", "Epic"},
					Description: "<i>explorers travel</i> through a wormhole",
				},
				Score: 0.82, MatchPercent: 82, Rank: 1,
			},
		},
		Total:     1,
		QueryTime: 3,
	}
}

func TestWriteRecommendations_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"You searched: Blade Runner 2049 (movie)",
		"Found 1 matches in 3ms",
		"1. Interstellar (2014)  [82% match]",
		"Genres: Sci-Fi, Drama, Adventure",
		"explorers travel through a wormhole",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Epic") {
		t.Error("more than three genres printed")
	}
	if strings.Contains(out, "<i>") {
		t.Error("markup leaked into output")
	}
}

func TestWriteRecommendations_grouped(t *testing.T) {
	resp := &models.RecommendResponse{
		Source: &models.MediaItem{ID: "movie:1", Title: "Query", Category: models.CategoryMovie},
		Grouped: map[models.Category][]*models.Recommendation{
			models.CategoryAnime: {
				{Item: &models.MediaItem{ID: "anime:1", Title: "Cowboy Bebop", Category: models.CategoryAnime}, Rank: 1, MatchPercent: 75},
			},
			models.CategoryMovie: {
				{Item: &models.MediaItem{ID: "movie:2", Title: "Interstellar", Category: models.CategoryMovie}, Rank: 1, MatchPercent: 80},
			},
			models.Category("podcast"): {
				{Item: &models.MediaItem{ID: "pod:1", Title: "Talk", Category: models.Category("podcast")}, Rank: 1, MatchPercent: 60},
			},
		},
		Total: 3,
	}

	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	moviesAt := strings.Index(out, "Similar Movies")
	animeAt := strings.Index(out, "Similar Anime")
	if moviesAt < 0 || animeAt < 0 {
		t.Fatalf("missing section headers:\n%s", out)
	}
	if moviesAt > animeAt {
		t.Error("movies section should come before anime")
	}
	if !strings.Contains(out, "Similar podcast") {
		t.Errorf("unknown category section missing:\n%s", out)
	}
}

func TestWriteRecommendations_json(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatal(err)
	}

	var decoded models.RecommendResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Source.ID != "movie:1" || decoded.Total != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}
