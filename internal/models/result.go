package models

import "math"

// Recommendation is a single ranked match.
type Recommendation struct {
	Item *MediaItem `json:"item"`
	// Score is the cosine similarity against the query item.
	Score float64 `json:"score"`
	// MatchPercent is the score presented as a whole percentage.
	MatchPercent int `json:"match_percent"`
	// Rank is 1-based. In grouped responses ranks restart per category.
	Rank int `json:"rank"`
}

// RecommendResponse is the response for a recommendation request.
// Either Results or Grouped is populated, depending on the query's
// GroupByCategory flag.
type RecommendResponse struct {
	Source    *MediaItem                   `json:"source"`
	Results   []*Recommendation            `json:"results,omitempty"`
	Grouped   map[Category][]*Recommendation `json:"grouped,omitempty"`
	Total     int                          `json:"total"`
	QueryTime int64                        `json:"query_time_ms"`
}

// Percent converts a similarity score to a whole percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}
