package cluster

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/localrivet/clustersummary/internal/errortypes"
)

func twoBlobs() [][]float64 {
	return [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{5, 5}, {5.1, 5}, {5, 5.1},
	}
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	res, err := KMeans(context.Background(), twoBlobs(), 2, DefaultOptions())
	if err != nil {
		t.Fatalf("KMeans() error = %v", err)
	}

	if res.Labels[0] != res.Labels[1] || res.Labels[1] != res.Labels[2] {
		t.Errorf("first blob split across clusters: %v", res.Labels)
	}
	if res.Labels[3] != res.Labels[4] || res.Labels[4] != res.Labels[5] {
		t.Errorf("second blob split across clusters: %v", res.Labels)
	}
	if res.Labels[0] == res.Labels[3] {
		t.Errorf("blobs share a cluster: %v", res.Labels)
	}
	if res.Iterations < 1 {
		t.Errorf("Iterations = %d, want >= 1", res.Iterations)
	}
	if res.Inertia <= 0 || res.Inertia > 0.1 {
		t.Errorf("Inertia = %v, want small positive value", res.Inertia)
	}

	members := res.Members()
	for c, m := range members {
		if len(m) != 3 {
			t.Errorf("cluster %d has %d members, want 3", c, len(m))
		}
	}
}

func TestKMeansIsDeterministic(t *testing.T) {
	points := [][]float64{
		{1, 2}, {3, 1}, {0, 4}, {7, 7}, {8, 6}, {2, 2}, {9, 9}, {4, 4}, {6, 1},
	}
	opts := DefaultOptions()

	first, err := KMeans(context.Background(), points, 3, opts)
	if err != nil {
		t.Fatalf("KMeans() error = %v", err)
	}
	second, err := KMeans(context.Background(), points, 3, opts)
	if err != nil {
		t.Fatalf("KMeans() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs with the same seed differ:\n%+v\n%+v", first, second)
	}
}

func TestKMeansEveryClusterNonEmpty(t *testing.T) {
	tests := []struct {
		name   string
		points [][]float64
		k      int
	}{
		{"identical points", [][]float64{{1, 1}, {1, 1}, {1, 1}}, 2},
		{"k equals n", [][]float64{{0}, {1}, {2}, {3}}, 4},
		{"single point", [][]float64{{3, 4}}, 1},
		{"zero vectors", [][]float64{{0, 0}, {0, 0}, {1, 0}}, 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := KMeans(context.Background(), test.points, test.k, DefaultOptions())
			if err != nil {
				t.Fatalf("KMeans() error = %v", err)
			}
			if len(res.Centroids) != test.k {
				t.Fatalf("got %d centroids, want %d", len(res.Centroids), test.k)
			}
			for c, m := range res.Members() {
				if len(m) == 0 {
					t.Errorf("cluster %d is empty (labels %v)", c, res.Labels)
				}
			}
		})
	}
}

func TestKMeansInvalidCount(t *testing.T) {
	for _, k := range []int{0, -1, 4} {
		_, err := KMeans(context.Background(), [][]float64{{0}, {1}, {2}}, k, DefaultOptions())
		if !errors.Is(err, errortypes.ErrInvalidClusterCount) {
			t.Errorf("KMeans(k=%d) error = %v, want ErrInvalidClusterCount", k, err)
		}
	}
}

func TestKMeansDimensionMismatch(t *testing.T) {
	_, err := KMeans(context.Background(), [][]float64{{0, 1}, {1}}, 1, DefaultOptions())
	if !errortypes.IsValidationError(err) {
		t.Errorf("KMeans() error = %v, want validation error", err)
	}
}

func TestKMeansCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := KMeans(ctx, twoBlobs(), 2, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("KMeans() error = %v, want context.Canceled", err)
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {9, 3}, {10, 4}, {100, 10},
	}
	for _, test := range tests {
		if got := SqrtCount(test.n); got != test.want {
			t.Errorf("SqrtCount(%d) = %d, want %d", test.n, got, test.want)
		}
	}

	if k, err := ClampCount(4, 2); err != nil || k != 2 {
		t.Errorf("ClampCount(4, 2) = %d, %v, want 2", k, err)
	}
	if k, err := ClampCount(2, 5); err != nil || k != 2 {
		t.Errorf("ClampCount(2, 5) = %d, %v, want 2", k, err)
	}
	if _, err := ClampCount(0, 5); !errors.Is(err, errortypes.ErrInvalidClusterCount) {
		t.Errorf("ClampCount(0, 5) error = %v, want ErrInvalidClusterCount", err)
	}
	if _, err := ClampCount(3, 0); !errors.Is(err, errortypes.ErrInvalidClusterCount) {
		t.Errorf("ClampCount(3, 0) error = %v, want ErrInvalidClusterCount", err)
	}
}
