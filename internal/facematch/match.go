package facematch

import (
	"fmt"

	"github.com/kozaktomas/faceval/internal/event"
)

var log = event.Log

// Match finds the known face nearest to unknown. For every known face the
// front and mirrored embeddings of both faces are compared pairwise and the
// four distances are combined according to opts.Mode. The first known face
// with the lowest combined distance wins; when that distance is within
// opts.Threshold its label and color are copied onto unknown.
func Match(unknown *UnknownFace, knowns []KnownFace, opts MatchOptions) (MatchResult, error) {
	if unknown == nil {
		return MatchResult{}, fmt.Errorf("%w: unknown face is nil", ErrInvalidInput)
	}
	if len(knowns) == 0 {
		return MatchResult{}, fmt.Errorf("%w: no known faces to match against", ErrInvalidInput)
	}
	if opts.Metric == "" {
		opts.Metric = SqEuclidean
	}
	if opts.Mode == "" {
		opts.Mode = ModeMean
	}

	uFront := unknown.Front.Float64()
	uMirror := unknown.Mirror.Float64()
	if len(uFront) == 0 || len(uFront) != len(uMirror) {
		return MatchResult{}, fmt.Errorf("%w: unknown face embeddings have lengths %d and %d",
			ErrInvalidInput, len(uFront), len(uMirror))
	}

	distances := make([]float64, len(knowns))
	for i := range knowns {
		d, err := knownDistance(uFront, uMirror, &knowns[i], opts)
		if err != nil {
			return MatchResult{}, fmt.Errorf("known face %d (%s): %w", i, knowns[i].Label, err)
		}
		distances[i] = d
	}

	best := 0
	for i, d := range distances {
		if d < distances[best] {
			best = i
		}
	}

	result := MatchResult{
		Index:     best,
		Distance:  distances[best],
		Distances: distances,
	}

	if distances[best] <= opts.Threshold {
		unknown.Label = knowns[best].Label
		unknown.Color = knowns[best].Color
		result.Matched = true
		log.Debugf("match: %q at %s distance %.4f (threshold %v)", unknown.Label, opts.Metric, result.Distance, opts.Threshold)
	} else {
		if opts.UnmatchedLabel != nil {
			unknown.Label = *opts.UnmatchedLabel
		}
		log.Debugf("match: nearest %q at %.4f is above threshold %v", knowns[best].Label, result.Distance, opts.Threshold)
	}
	result.Label = unknown.Label

	if opts.Visualize != nil {
		err := opts.Visualize(VisualizeInput{
			Unknown:   unknown,
			Knowns:    knowns,
			Result:    result,
			Metric:    opts.Metric,
			Threshold: opts.Threshold,
		})
		if err != nil {
			return result, fmt.Errorf("visualize match: %w", err)
		}
	}

	return result, nil
}

func knownDistance(uFront, uMirror []float64, known *KnownFace, opts MatchOptions) (float64, error) {
	kFront := known.Front.Float64()
	kMirror := known.Mirror.Float64()

	pairs := [4][2][]float64{
		{uFront, kFront},
		{uFront, kMirror},
		{uMirror, kFront},
		{uMirror, kMirror},
	}

	var d [4]float64
	for i, p := range pairs {
		v, err := Distance(opts.Metric, p[0], p[1])
		if err != nil {
			return 0, err
		}
		d[i] = v
	}

	return aggregate(opts.Mode, d)
}
