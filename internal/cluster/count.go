package cluster

import (
	"math"

	"github.com/localrivet/clustersummary/internal/errortypes"
)

// CountFunc chooses a cluster count from the number of original sentences.
type CountFunc func(sentences int) int

// SqrtCount returns ceil(sqrt(n)).
func SqrtCount(sentences int) int {
	if sentences <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(sentences))))
}

// ClampCount caps k at the number of points. A k below one, or no points at
// all, is an InvalidClusterCountError.
func ClampCount(k, points int) (int, error) {
	if k < 1 || points < 1 {
		return 0, errortypes.InvalidClusterCountError(k, points)
	}
	if k > points {
		return points, nil
	}
	return k, nil
}
