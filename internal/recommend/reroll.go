package recommend

import "math/rand"

// Reroll shuffles near-tied results within the top k so a repeat query can
// surface alternates. Results whose scores sit within epsilon of each other
// form a tie band and are shuffled together; bands never cross, so a
// clearly better match still comes first. The shuffle is seeded and
// deterministic for a given seed; Rank itself stays untouched. This is a
// presentation-layer helper, not part of the ranking contract.
func Reroll(results []Scored, k int, epsilon float64, seed int64) []Scored {
	if len(results) == 0 {
		return results
	}
	if k <= 0 || k > len(results) {
		k = len(results)
	}
	out := make([]Scored, len(results))
	copy(out, results)

	rng := rand.New(rand.NewSource(seed))
	start := 0
	for start < k {
		end := start + 1
		for end < k && out[start].Score-out[end].Score <= epsilon {
			end++
		}
		rng.Shuffle(end-start, func(i, j int) {
			out[start+i], out[start+j] = out[start+j], out[start+i]
		})
		start = end
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
