// Package clusterer assigns visual cluster ids to country records so that
// scatter and parallel-coordinate views color consistently.
//
// The assignment is a rank-percentile heuristic, not k-means: each record
// gets a percentile on two chosen fields, and the averaged percentile is
// binned into k groups. It is deterministic for a given input, which is
// exactly what cross-view color stability needs. The backend's error curve
// and optimal-k marker are tuned to this heuristic's shape, so it must not
// be swapped for a true distance-minimizing algorithm.
package clusterer

import (
	"sort"

	"github.com/Veraticus/geoscope/internal/model"
)

// Assign returns a cluster id in [0, k) for every record, based on the
// averaged rank-percentiles of fields x and y within records. Records with
// an invalid value on either field still get an id (their percentile ranks
// at the bottom); callers normally pass pre-filtered rows.
func Assign(records []model.CountryRecord, x, y model.Field, k int) []int {
	if k < 1 {
		k = 1
	}
	ids := make([]int, len(records))
	if len(records) == 0 {
		return ids
	}

	px := percentiles(records, x)
	py := percentiles(records, y)

	for i := range records {
		id := int((px[i] + py[i]) / 2 * float64(k))
		if id < 0 {
			id = 0
		}
		if id > k-1 {
			id = k - 1
		}
		ids[i] = id
	}
	return ids
}

// percentiles computes the rank-percentile of each record's value of f,
// in [0, 1]. Ties share the percentile of their first rank.
func percentiles(records []model.CountryRecord, f model.Field) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Value(f)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	out := make([]float64, len(values))
	if len(values) < 2 {
		return out
	}
	n := float64(len(sorted) - 1)
	for i, v := range values {
		// Rank of the first occurrence, so equal values get equal ranks.
		rank := sort.SearchFloat64s(sorted, v)
		out[i] = float64(rank) / n
	}
	return out
}
