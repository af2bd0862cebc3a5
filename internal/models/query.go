package models

import "fmt"

// RecommendQuery represents a recommendation request. Exactly one of ItemID
// or Title must be set; Title is resolved against the catalog by the engine.
type RecommendQuery struct {
	ItemID          string `json:"item_id,omitempty"`
	Title           string `json:"title,omitempty"`
	Limit           int    `json:"limit,omitempty"`
	GroupByCategory bool   `json:"group_by_category,omitempty"`
	// DedupFranchise collapses results that share a franchise key, keeping
	// the highest-scoring representative. Unset falls back to the server
	// default.
	DedupFranchise *bool `json:"dedup_franchise,omitempty"`
	// RerollSeed, when non-zero, shuffles near-tied top results. The ranked
	// sequence itself is deterministic; the shuffle is presentation only.
	RerollSeed int64 `json:"reroll_seed,omitempty"`
}

// Validate ensures the query has a subject and normalizes the limit.
func (q *RecommendQuery) Validate() error {
	if q.ItemID == "" && q.Title == "" {
		return fmt.Errorf("query needs an item_id or a title")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}
