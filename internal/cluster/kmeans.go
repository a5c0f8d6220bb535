// Package cluster partitions sentence embeddings with a seeded k-means.
package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Default k-means settings.
const (
	DefaultSeed          = 123
	DefaultMaxIterations = 300
	DefaultRestarts      = 10
	DefaultTolerance     = 1e-4
)

// Options controls a k-means run.
type Options struct {
	// Seed makes runs reproducible. Equal seeds and inputs give equal results.
	Seed int64

	// MaxIterations bounds the Lloyd iterations of a single restart.
	MaxIterations int

	// Restarts is the number of k-means++ initialisations tried; the run
	// with the lowest inertia wins.
	Restarts int

	// Tolerance is relative to the mean per-feature variance of the points.
	// A restart stops once the total squared centroid shift is within it.
	Tolerance float64
}

// DefaultOptions returns the default k-means settings.
func DefaultOptions() Options {
	return Options{
		Seed:          DefaultSeed,
		MaxIterations: DefaultMaxIterations,
		Restarts:      DefaultRestarts,
		Tolerance:     DefaultTolerance,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Restarts <= 0 {
		o.Restarts = DefaultRestarts
	}
	if o.Tolerance < 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// Result is a partition of the input points. Every cluster has at least one
// member and Centroids[c] is the mean of the points labelled c.
type Result struct {
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// Members returns the point indices of each cluster in ascending order.
func (r *Result) Members() [][]int {
	members := make([][]int, len(r.Centroids))
	for i, label := range r.Labels {
		members[label] = append(members[label], i)
	}
	return members
}

// KMeans partitions points into k clusters. k must lie in [1, len(points)];
// callers clamp with ClampCount first. The context is checked between
// iterations.
func KMeans(ctx context.Context, points [][]float64, k int, opts Options) (*Result, error) {
	if k < 1 || k > len(points) {
		return nil, errortypes.InvalidClusterCountError(k, len(points))
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, errortypes.ValidationError(
				fmt.Errorf("point %d has dimension %d, want %d", i, len(p), dim),
				"cannot cluster points")
		}
	}
	opts = opts.withDefaults()
	tol := opts.Tolerance * meanVariance(points, dim)
	rng := rand.New(rand.NewSource(opts.Seed))

	var best *Result
	for run := 0; run < opts.Restarts; run++ {
		res, err := lloyd(ctx, points, initPlusPlus(points, k, rng), opts.MaxIterations, tol)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// initPlusPlus picks k starting centroids with D² weighting.
func initPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(n)]))

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(d2)
		pick := n - 1
		if total == 0 {
			pick = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			var acc float64
			for i, d := range d2 {
				acc += d
				if acc > target {
					pick = i
					break
				}
			}
		}
		c := clone(points[pick])
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func lloyd(ctx context.Context, points, centroids [][]float64, maxIter int, tol float64) (*Result, error) {
	k := len(centroids)
	dim := len(points[0])
	labels := make([]int, len(points))

	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iter++

		for i, p := range points {
			labels[i] = nearest(p, centroids)
		}
		repairEmpty(points, centroids, labels)

		next := means(points, labels, k, dim)
		var shift float64
		for c := range centroids {
			shift += sqDist(centroids[c], next[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return &Result{Labels: labels, Centroids: centroids, Inertia: inertia, Iterations: iter}, nil
}

// nearest returns the closest centroid; ties go to the lowest index.
func nearest(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// repairEmpty gives every empty cluster the point farthest from its own
// centroid, taken from a cluster that has more than one member.
func repairEmpty(points, centroids [][]float64, labels []int) {
	counts := make([]int, len(centroids))
	for _, l := range labels {
		counts[l]++
	}
	for c := range centroids {
		if counts[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, p := range points {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := sqDist(p, centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			return
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c]++
	}
}

func means(points [][]float64, labels []int, k, dim int) [][]float64 {
	sums := make([][]float64, k)
	counts := make([]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}
	for c := range sums {
		if counts[c] > 0 {
			floats.Scale(1/counts[c], sums[c])
		}
	}
	return sums
}

func meanVariance(points [][]float64, dim int) float64 {
	if dim == 0 {
		return 0
	}
	column := make([]float64, len(points))
	var total float64
	for j := 0; j < dim; j++ {
		for i, p := range points {
			column[i] = p[j]
		}
		total += stat.PopVariance(column, nil)
	}
	return total / float64(dim)
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
