package facematch

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParseMetric converts a metric name to a Metric.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case SqEuclidean, Euclidean, Cosine:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidInput, s)
	}
}

// ParseMode converts an aggregation mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeMean, ModeSum:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, s)
	}
}

// Distance computes the distance between two equally long vectors.
// Cosine distance is 1 - cosine similarity; a zero vector is treated as orthogonal to everything.
func Distance(metric Metric, a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: embedding length mismatch (%d vs %d)", ErrInvalidInput, len(a), len(b))
	}

	switch metric {
	case SqEuclidean:
		diff := make([]float64, len(a))
		floats.SubTo(diff, a, b)
		return floats.Dot(diff, diff), nil
	case Euclidean:
		return floats.Distance(a, b, 2), nil
	case Cosine:
		normA := floats.Norm(a, 2)
		normB := floats.Norm(b, 2)
		if normA == 0 || normB == 0 {
			return 1, nil
		}
		return 1 - floats.Dot(a, b)/(normA*normB), nil
	default:
		return 0, fmt.Errorf("%w: unknown metric %q", ErrInvalidInput, metric)
	}
}

// aggregate combines the four pairwise distances of one known face.
func aggregate(mode Mode, d [4]float64) (float64, error) {
	sum := floats.Sum(d[:])
	switch mode {
	case ModeSum:
		return sum, nil
	case ModeMean:
		return sum / 4, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, mode)
	}
}
