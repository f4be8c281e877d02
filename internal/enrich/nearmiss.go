package enrich

import (
	"sort"
	"strings"

	"jobpipe/internal/table"

	"github.com/antzucaro/matchr"
)

const (
	nearMissThreshold = 0.85
	maxNearMisses     = 10
)

// NearMiss is an unmatched left key that closely resembles a right key,
// usually a casing or spelling difference in one of the files.
type NearMiss struct {
	Key        string
	Suggestion string
	Score      float64
}

func nearMisses(left, right *table.Table, leftKey, rightKey string) []NearMiss {
	rightKeys := map[string]bool{}
	for _, v := range right.ColumnValues(rightKey) {
		if v != nil {
			rightKeys[table.Format(v)] = true
		}
	}
	if len(rightKeys) == 0 {
		return nil
	}
	candidates := make([]string, 0, len(rightKeys))
	for k := range rightKeys {
		candidates = append(candidates, k)
	}
	sort.Strings(candidates)

	var out []NearMiss
	seen := map[string]bool{}
	for _, v := range left.ColumnValues(leftKey) {
		if v == nil {
			continue
		}
		k := table.Format(v)
		if rightKeys[k] || seen[k] {
			continue
		}
		seen[k] = true

		best, score := "", 0.0
		for _, c := range candidates {
			s := matchr.JaroWinkler(strings.ToLower(k), strings.ToLower(c), false)
			if s > score {
				best, score = c, s
			}
		}
		if score >= nearMissThreshold {
			out = append(out, NearMiss{Key: k, Suggestion: best, Score: score})
			if len(out) == maxNearMisses {
				break
			}
		}
	}
	return out
}
