package ann

import (
	"errors"
	"sort"
)

// ErrCorruptIndex reports an index stream that cannot be decoded or that does
// not match its elements.
var ErrCorruptIndex = errors.New("ann: corrupt index stream")

// Result is a single search hit. ID is the element's push order; Score is a
// distance, smaller is better.
type Result struct {
	ID    uint64
	Score float32
}

// SortResults orders results by ascending score, breaking ties on id.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// TopK sorts results and keeps at most k of them.
func TopK(results []Result, k int) []Result {
	SortResults(results)
	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
