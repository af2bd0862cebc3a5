package recommend

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/vector"
)

// fixedStore builds a store whose vectors are pinned per item, so test
// scores are exact instead of hash-derived.
func fixedStore(t *testing.T, items []*models.MediaItem, vectors map[string][]float32) *vector.Store {
	t.Helper()
	dims := 0
	for _, v := range vectors {
		dims = len(v)
		break
	}
	emb := embedding.NewMockEmbedder(dims)
	for _, item := range items {
		vec, ok := vectors[item.ID]
		if !ok {
			t.Fatalf("no vector pinned for %s", item.ID)
		}
		emb.SetVector(item.Description, vec)
	}
	store, err := vector.Build(context.Background(), items, emb, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func movie(id, title string) *models.MediaItem {
	return &models.MediaItem{ID: id, Title: title, Category: models.CategoryMovie, Description: "about " + id}
}

func TestRank_excludesQueryAndSortsDescending(t *testing.T) {
	items := []*models.MediaItem{
		movie("m:1", "Blade Runner 2049"),
		movie("m:2", "Interstellar"),
		movie("m:3", "Midsommar"),
	}
	store := fixedStore(t, items, map[string][]float32{
		"m:1": {1, 0, 0},
		"m:2": {0.9, 0.1, 0}, // closest to the query
		"m:3": {0, 1, 0},     // orthogonal
	})

	results, err := Rank("m:1", store, items, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Item.ID == "m:1" {
			t.Error("query item appeared in its own results")
		}
	}
	if results[0].Item.ID != "m:2" || results[1].Item.ID != "m:3" {
		t.Errorf("order = %s, %s", results[0].Item.ID, results[1].Item.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %f then %f", results[0].Score, results[1].Score)
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Errorf("ranks = %d, %d", results[0].Rank, results[1].Rank)
	}
}

func TestRank_tiesKeepCatalogOrder(t *testing.T) {
	items := []*models.MediaItem{
		movie("m:q", "Query"),
		movie("m:a", "Alpha"),
		movie("m:b", "Beta"),
		movie("m:c", "Gamma"),
	}
	same := []float32{0.5, 0.5, 0}
	store := fixedStore(t, items, map[string][]float32{
		"m:q": {1, 0, 0},
		"m:a": same,
		"m:b": same,
		"m:c": same,
	})

	for run := 0; run < 5; run++ {
		results, err := Rank("m:q", store, items, Options{})
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"m:a", "m:b", "m:c"}
		for i, id := range want {
			if results[i].Item.ID != id {
				t.Fatalf("run %d: position %d = %s, want %s", run, i, results[i].Item.ID, id)
			}
		}
	}
}

func TestRank_limitBeyondAvailable(t *testing.T) {
	items := []*models.MediaItem{
		movie("m:q", "Query"),
		movie("m:a", "Alpha"),
	}
	store := fixedStore(t, items, map[string][]float32{
		"m:q": {1, 0},
		"m:a": {0, 1},
	})

	results, err := Rank("m:q", store, items, Options{Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestRank_zeroVectorScoresZero(t *testing.T) {
	items := []*models.MediaItem{
		movie("m:q", "Query"),
		movie("m:z", "Zero"),
	}
	store := fixedStore(t, items, map[string][]float32{
		"m:q": {1, 0},
		"m:z": {0, 0},
	})

	results, err := Rank("m:q", store, items, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Score != 0 {
		t.Errorf("zero vector score = %f, want 0", results[0].Score)
	}
}

func TestRank_unknownQueryID(t *testing.T) {
	items := []*models.MediaItem{movie("m:a", "Alpha")}
	store := fixedStore(t, items, map[string][]float32{"m:a": {1, 0}})

	_, err := Rank("m:missing", store, items, Options{})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRank_franchiseDedupKeepsHighestScore(t *testing.T) {
	items := []*models.MediaItem{
		movie("m:q", "Query"),
		movie("m:1", "Attack on Titan"),
		movie("m:2", "Attack on Titan: Final Season"),
		movie("m:3", "Midsommar"),
	}
	store := fixedStore(t, items, map[string][]float32{
		"m:q": {1, 0, 0},
		"m:1": {0.7, float32(math.Sqrt(1 - 0.49)), 0},
		"m:2": {0.9, float32(math.Sqrt(1 - 0.81)), 0},
		"m:3": {0.5, float32(math.Sqrt(1 - 0.25)), 0},
	})

	results, err := Rank("m:q", store, items, Options{FranchiseKey: FranchiseKey})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 after dedup", len(results))
	}
	if results[0].Item.ID != "m:2" {
		t.Errorf("franchise survivor = %s, want m:2 (the higher score)", results[0].Item.ID)
	}
	if results[1].Item.ID != "m:3" {
		t.Errorf("second result = %s, want m:3", results[1].Item.ID)
	}
}

func TestGroupByCategory(t *testing.T) {
	results := []Scored{
		{Item: &models.MediaItem{ID: "m:1", Category: models.CategoryMovie}, Score: 0.9, Rank: 1},
		{Item: &models.MediaItem{ID: "a:1", Category: models.CategoryAnime}, Score: 0.8, Rank: 2},
		{Item: &models.MediaItem{ID: "m:2", Category: models.CategoryMovie}, Score: 0.7, Rank: 3},
		{Item: &models.MediaItem{ID: "a:2", Category: models.CategoryAnime}, Score: 0.6, Rank: 4},
		{Item: &models.MediaItem{ID: "m:3", Category: models.CategoryMovie}, Score: 0.5, Rank: 5},
	}

	grouped := GroupByCategory(results, 2)

	movies := grouped[models.CategoryMovie]
	if len(movies) != 2 {
		t.Fatalf("got %d movies, want 2", len(movies))
	}
	if movies[0].Item.ID != "m:1" || movies[1].Item.ID != "m:2" {
		t.Errorf("movie order = %s, %s", movies[0].Item.ID, movies[1].Item.ID)
	}
	if movies[0].Rank != 1 || movies[1].Rank != 2 {
		t.Errorf("movie ranks = %d, %d, want renumbered per category", movies[0].Rank, movies[1].Rank)
	}
	anime := grouped[models.CategoryAnime]
	if len(anime) != 2 || anime[0].Rank != 1 || anime[1].Rank != 2 {
		t.Errorf("anime group = %+v", anime)
	}
}
