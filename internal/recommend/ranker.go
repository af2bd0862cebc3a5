// Package recommend implements similarity ranking over the catalog vector
// store, plus the serving engine that ties catalog, store, and title
// resolution together.
package recommend

import (
	"fmt"
	"sort"

	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/vector"
)

// Options configures a Rank call.
type Options struct {
	// Limit caps the number of results; 0 returns everything. Asking for
	// more than is available is not an error.
	Limit int
	// FranchiseKey, when set, collapses results sharing a key to the
	// highest-scoring representative. Applied after scoring, before sorting.
	FranchiseKey func(*models.MediaItem) string
}

// Scored pairs a catalog item with its similarity against the query item.
type Scored struct {
	Item  *models.MediaItem
	Score float64
	// Rank is 1-based within the returned sequence.
	Rank int

	// catalogIndex preserves input order for deterministic tie-breaks.
	catalogIndex int
}

// Rank scores every catalog item against the query item's vector and
// returns the matches sorted by descending similarity. The query item is
// always excluded. Ties keep catalog order, so identical inputs always
// produce identical output. Rank is a pure function: it holds no state
// across calls and never retries.
func Rank(queryID string, store *vector.Store, items []*models.MediaItem, opts Options) ([]Scored, error) {
	queryVec, err := store.Get(queryID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Scored, 0, len(items))
	for i, item := range items {
		if item.ID == queryID {
			continue
		}
		vec, err := store.Get(item.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog and store out of sync: %w", err)
		}
		score, err := vector.Cosine(queryVec, vec)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Scored{Item: item, Score: score, catalogIndex: i})
	}

	if opts.FranchiseKey != nil {
		candidates = dedupFranchise(candidates, opts.FranchiseKey)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if opts.Limit > 0 && opts.Limit < len(candidates) {
		candidates = candidates[:opts.Limit]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates, nil
}

// dedupFranchise keeps only the highest-scoring candidate per franchise
// key, preserving catalog order among the survivors. Score ties keep the
// earlier catalog entry. Empty keys are never collapsed.
func dedupFranchise(candidates []Scored, key func(*models.MediaItem) string) []Scored {
	best := make(map[string]int, len(candidates))
	drop := make(map[int]bool)
	for i, c := range candidates {
		k := key(c.Item)
		if k == "" {
			continue
		}
		j, seen := best[k]
		if !seen {
			best[k] = i
			continue
		}
		if c.Score > candidates[j].Score {
			drop[j] = true
			best[k] = i
		} else {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return candidates
	}
	out := candidates[:0]
	for i, c := range candidates {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

// GroupByCategory partitions ranked results by category, preserving their
// relative order and renumbering ranks within each category. perCategory
// caps each partition; 0 keeps everything.
func GroupByCategory(results []Scored, perCategory int) map[models.Category][]Scored {
	grouped := make(map[models.Category][]Scored)
	for _, r := range results {
		bucket := grouped[r.Item.Category]
		if perCategory > 0 && len(bucket) >= perCategory {
			continue
		}
		r.Rank = len(bucket) + 1
		grouped[r.Item.Category] = append(bucket, r)
	}
	return grouped
}
