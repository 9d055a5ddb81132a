package detection

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/kozaktomas/faceval/internal/event"
)

var log = event.Log

// apEpsilon is added to precision and recall denominators.
const apEpsilon = 1e-6

// MeanAveragePrecision returns the mean of the per-class average precisions
// at the given IoU threshold. Classes without ground truths are left out of the mean.
func MeanAveragePrecision(preds []Detection, truths []GroundTruth, iouThreshold float64, format Format, numClasses int) float64 {
	return Evaluate(preds, truths, iouThreshold, format, numClasses).MAP
}

// Evaluate computes per-class average precision with greedy, confidence
// ordered matching and returns the full report.
func Evaluate(preds []Detection, truths []GroundTruth, iouThreshold float64, format Format, numClasses int) Report {
	report := Report{
		IoUThreshold: iouThreshold,
		Format:       format,
		NumClasses:   numClasses,
	}

	// Nothing to detect and nothing detected counts as a perfect run.
	if len(preds) == 0 && len(truths) == 0 {
		report.MAP = 1.0
		return report
	}
	if len(preds) == 0 || len(truths) == 0 {
		return report
	}

	var sum float64
	for c := 0; c < numClasses; c++ {
		cr, ok := evaluateClass(c, preds, truths, iouThreshold, format)
		if !ok {
			log.Debugf("mAP: class %d has no ground truths, skipped", c)
			continue
		}
		report.Classes = append(report.Classes, cr)
		sum += cr.AP
	}

	if len(report.Classes) == 0 {
		log.Warnf("mAP: none of the %d classes has ground truths", numClasses)
		return report
	}

	report.MAP = sum / float64(len(report.Classes))
	return report
}

// evaluateClass scores a single class. It returns false when the class has
// no ground truths and must not take part in the mean.
func evaluateClass(class int, preds []Detection, truths []GroundTruth, iouThreshold float64, format Format) (ClassReport, bool) {
	var dets []Detection
	for _, d := range preds {
		if d.ClassID == class {
			dets = append(dets, d)
		}
	}

	var gts []GroundTruth
	byImage := make(map[string][]int)
	for _, gt := range truths {
		if gt.ClassID != class {
			continue
		}
		byImage[gt.ImageID] = append(byImage[gt.ImageID], len(gts))
		gts = append(gts, gt)
	}

	if len(gts) == 0 {
		return ClassReport{}, false
	}

	cr := ClassReport{
		ClassID:      class,
		GroundTruths: len(gts),
		Detections:   len(dets),
	}

	if len(dets) == 0 {
		cr.Curve = []CurvePoint{{Recall: 0, Precision: 1}}
		return cr, true
	}

	sort.SliceStable(dets, func(i, j int) bool {
		return dets[i].Score > dets[j].Score
	})

	claimed := make([]bool, len(gts))
	tp := make([]float64, len(dets))
	fp := make([]float64, len(dets))

	for i, d := range dets {
		bestIoU := 0.0
		bestGT := -1
		for _, idx := range byImage[d.ImageID] {
			iou := IoU(d.Box, gts[idx].Box, format)
			if iou > bestIoU {
				bestIoU = iou
				bestGT = idx
			}
		}

		// A ground truth is claimed by the highest scored detection only.
		if bestGT >= 0 && bestIoU > iouThreshold && !claimed[bestGT] {
			claimed[bestGT] = true
			tp[i] = 1
			cr.TruePositives++
		} else {
			fp[i] = 1
			cr.FalsePositives++
		}
	}

	tpCum := floats.CumSum(make([]float64, len(tp)), tp)
	fpCum := floats.CumSum(make([]float64, len(fp)), fp)

	recalls := make([]float64, 0, len(dets)+1)
	precisions := make([]float64, 0, len(dets)+1)
	recalls = append(recalls, 0)
	precisions = append(precisions, 1)
	for i := range tpCum {
		recalls = append(recalls, tpCum[i]/(float64(len(gts))+apEpsilon))
		precisions = append(precisions, tpCum[i]/(tpCum[i]+fpCum[i]+apEpsilon))
	}

	cr.AP = integrate.Trapezoidal(recalls, precisions)
	cr.Curve = make([]CurvePoint, len(recalls))
	for i := range recalls {
		cr.Curve[i] = CurvePoint{Recall: recalls[i], Precision: precisions[i]}
	}

	return cr, true
}
