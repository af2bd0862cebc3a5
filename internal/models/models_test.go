package models

import "testing"

func TestRecommendQueryValidate(t *testing.T) {
	cases := []struct {
		name      string
		query     RecommendQuery
		wantErr   bool
		wantLimit int
	}{
		{"by id", RecommendQuery{ItemID: "movie:1"}, false, 10},
		{"by title", RecommendQuery{Title: "interstellar"}, false, 10},
		{"no subject", RecommendQuery{Limit: 5}, true, 0},
		{"explicit limit", RecommendQuery{ItemID: "x", Limit: 25}, false, 25},
		{"limit capped", RecommendQuery{ItemID: "x", Limit: 5000}, false, 100},
		{"negative limit", RecommendQuery{ItemID: "x", Limit: -3}, false, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.query.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tc.wantErr)
			}
			if err == nil && tc.query.Limit != tc.wantLimit {
				t.Errorf("limit = %d, want %d", tc.query.Limit, tc.wantLimit)
			}
		})
	}
}

func TestMediaItemValidate(t *testing.T) {
	valid := MediaItem{ID: "movie:1", Title: "T", Category: CategoryMovie}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid item rejected: %v", err)
	}

	cases := []MediaItem{
		{Title: "T", Category: CategoryMovie},
		{ID: "movie:1", Category: CategoryMovie},
		{ID: "movie:1", Title: "T"},
	}
	for i, item := range cases {
		if err := item.Validate(); err == nil {
			t.Errorf("case %d: incomplete item accepted", i)
		}
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		score float64
		want  int
	}{
		{1.0, 100},
		{0.824, 82},
		{0.826, 83},
		{0, 0},
		{-0.5, -50},
	}
	for _, tc := range cases {
		if got := Percent(tc.score); got != tc.want {
			t.Errorf("Percent(%v) = %d, want %d", tc.score, got, tc.want)
		}
	}
}
