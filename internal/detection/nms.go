package detection

import "sort"

// NonMaxSuppression drops detections that overlap a higher scored detection
// of the same image and class by more than iouThreshold.
// The input slice is not modified; survivors keep descending score order.
func NonMaxSuppression(dets []Detection, iouThreshold float64, format Format) []Detection {
	if len(dets) == 0 {
		return dets
	}

	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	keep := make([]bool, len(sorted))
	for i := range keep {
		keep[i] = true
	}

	for i := range sorted {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			if !keep[j] {
				continue
			}
			if sorted[i].ImageID != sorted[j].ImageID || sorted[i].ClassID != sorted[j].ClassID {
				continue
			}
			if IoU(sorted[i].Box, sorted[j].Box, format) > iouThreshold {
				keep[j] = false
			}
		}
	}

	result := make([]Detection, 0, len(sorted))
	for i, d := range sorted {
		if keep[i] {
			result = append(result, d)
		}
	}
	return result
}
