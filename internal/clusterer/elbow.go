package clusterer

import (
	"fmt"
	"math"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/Veraticus/geoscope/internal/common"
	"github.com/Veraticus/geoscope/internal/model"
)

// ErrorCurve computes a clustering-error curve locally by running k-means
// over the (x, y) projection of records for each candidate k. It exists so
// the bar chart stays useful when the backend clustering endpoints are
// unreachable; the displayed per-record coloring still comes from Assign.
func ErrorCurve(records []model.CountryRecord, x, y model.Field, maxK int) (*model.ErrorCurve, error) {
	obs := observations(records, x, y)
	if len(obs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 valid records for an error curve", common.ErrNoData)
	}
	if maxK > len(obs) {
		maxK = len(obs)
	}
	if maxK < 1 {
		maxK = 1
	}

	curve := &model.ErrorCurve{Points: make([]model.ErrorCurvePoint, 0, maxK)}
	for k := 1; k <= maxK; k++ {
		mse, err := meanSquaredError(obs, k)
		if err != nil {
			return nil, fmt.Errorf("k-means for k=%d: %w", k, err)
		}
		curve.Points = append(curve.Points, model.ErrorCurvePoint{K: k, MSE: mse})
	}

	curve.OptimalK = elbow(curve.Points)
	return curve, nil
}

// observations projects records onto (x, y) and min-max normalizes each
// axis, in log space for log-scaled fields, so neither axis dominates the
// distance metric.
func observations(records []model.CountryRecord, x, y model.Field) clusters.Observations {
	xs := make([]float64, 0, len(records))
	ys := make([]float64, 0, len(records))
	for _, r := range records {
		vx, vy := r.Value(x), r.Value(y)
		if !model.ValidValue(vx) || !model.ValidValue(vy) {
			continue
		}
		xs = append(xs, axisSpace(vx, x))
		ys = append(ys, axisSpace(vy, y))
	}

	normalize(xs)
	normalize(ys)

	obs := make(clusters.Observations, len(xs))
	for i := range xs {
		obs[i] = clusters.Coordinates{xs[i], ys[i]}
	}
	return obs
}

func axisSpace(v float64, f model.Field) float64 {
	if f.Linear() {
		return v
	}
	return math.Log10(math.Max(v, 1))
}

func normalize(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		for i := range values {
			values[i] = 0.5
		}
		return
	}
	for i := range values {
		values[i] = (values[i] - lo) / span
	}
}

// meanSquaredError partitions obs into k clusters and returns the average
// squared distance to the assigned center. k=1 is the variance around the
// centroid; kmeans itself requires k >= 2.
func meanSquaredError(obs clusters.Observations, k int) (float64, error) {
	if k == 1 {
		center := clusters.Coordinates{0, 0}
		for _, o := range obs {
			c := o.Coordinates()
			center[0] += c[0]
			center[1] += c[1]
		}
		center[0] /= float64(len(obs))
		center[1] /= float64(len(obs))
		return averageSquaredDistance([]clusters.Cluster{{Center: center, Observations: obs}}, len(obs)), nil
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return 0, err
	}
	return averageSquaredDistance(partition, len(obs)), nil
}

func averageSquaredDistance(partition []clusters.Cluster, n int) float64 {
	var sum float64
	for _, c := range partition {
		for _, o := range c.Observations {
			coords := o.Coordinates()
			for i, center := range c.Center {
				d := coords[i] - center
				sum += d * d
			}
		}
	}
	return sum / float64(n)
}

// elbow picks the k whose point is farthest from the chord between the
// first and last points of the curve.
func elbow(points []model.ErrorCurvePoint) int {
	if len(points) < 3 {
		if len(points) == 0 {
			return 1
		}
		return points[len(points)-1].K
	}

	first, last := points[0], points[len(points)-1]
	dx := float64(last.K - first.K)
	dy := last.MSE - first.MSE
	length := math.Hypot(dx, dy)
	if length == 0 {
		return first.K
	}

	best, bestDist := first.K, -1.0
	for _, p := range points {
		dist := math.Abs(dy*float64(p.K)-dx*p.MSE+dx*first.MSE-dy*float64(first.K)) / length
		if dist > bestDist {
			best, bestDist = p.K, dist
		}
	}
	return best
}
