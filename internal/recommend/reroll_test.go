package recommend

import (
	"testing"

	"github.com/hyperjump/susume/internal/models"
)

func scoredFixture(scores ...float64) []Scored {
	out := make([]Scored, len(scores))
	for i, s := range scores {
		out[i] = Scored{
			Item:  &models.MediaItem{ID: string(rune('a' + i)), Category: models.CategoryMovie},
			Score: s,
			Rank:  i + 1,
		}
	}
	return out
}

func ids(results []Scored) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.ID
	}
	return out
}

func TestReroll_deterministicPerSeed(t *testing.T) {
	in := scoredFixture(0.90, 0.89, 0.88, 0.60, 0.59)

	a := Reroll(in, 5, 0.02, 42)
	b := Reroll(in, 5, 0.02, 42)
	for i := range a {
		if a[i].Item.ID != b[i].Item.ID {
			t.Fatalf("same seed produced different order at %d: %v vs %v", i, ids(a), ids(b))
		}
	}
}

func TestReroll_bandsNeverCross(t *testing.T) {
	in := scoredFixture(0.90, 0.89, 0.88, 0.60, 0.59)

	for seed := int64(1); seed <= 20; seed++ {
		out := Reroll(in, 5, 0.02, seed)
		// The 0.88-0.90 band must stay ahead of the 0.59-0.60 band.
		for i := 0; i < 3; i++ {
			if out[i].Score < 0.88 {
				t.Fatalf("seed %d: low-band score %f surfaced in top band: %v", seed, out[i].Score, ids(out))
			}
		}
	}
}

func TestReroll_doesNotMutateInput(t *testing.T) {
	in := scoredFixture(0.90, 0.895, 0.89)
	before := ids(in)

	Reroll(in, 3, 0.02, 7)

	for i, id := range ids(in) {
		if id != before[i] {
			t.Fatal("Reroll mutated its input")
		}
	}
}

func TestReroll_renumbersRanks(t *testing.T) {
	in := scoredFixture(0.90, 0.895, 0.89, 0.5)

	out := Reroll(in, 3, 0.02, 99)
	for i, r := range out {
		if r.Rank != i+1 {
			t.Errorf("position %d has rank %d", i, r.Rank)
		}
	}
}

func TestReroll_empty(t *testing.T) {
	if out := Reroll(nil, 10, 0.02, 1); len(out) != 0 {
		t.Errorf("got %d results from empty input", len(out))
	}
}
