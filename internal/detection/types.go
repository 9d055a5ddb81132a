// Package detection scores face detectors against hand-labelled ground truth.
package detection

// Detection is one box produced by a detector.
type Detection struct {
	ImageID string  `json:"image_id"`
	ClassID int     `json:"class_id"`
	Score   float64 `json:"score"`
	Box     Box     `json:"box"`
}

// GroundTruth is one authoritative, hand-labelled box.
type GroundTruth struct {
	ImageID string `json:"image_id"`
	ClassID int    `json:"class_id"`
	Box     Box    `json:"box"`
}

// CurvePoint is a single point on a precision-recall curve.
type CurvePoint struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
}

// ClassReport holds the average precision breakdown of a single class.
type ClassReport struct {
	ClassID        int          `json:"class_id"`
	GroundTruths   int          `json:"ground_truths"`
	Detections     int          `json:"detections"`
	TruePositives  int          `json:"true_positives"`
	FalsePositives int          `json:"false_positives"`
	AP             float64      `json:"ap"`
	Curve          []CurvePoint `json:"curve,omitempty"`
}

// Report is the result of one evaluation run.
// Classes lists only the classes that had at least one ground truth.
type Report struct {
	IoUThreshold float64       `json:"iou_threshold"`
	Format       Format        `json:"format"`
	NumClasses   int           `json:"num_classes"`
	MAP          float64       `json:"map"`
	Classes      []ClassReport `json:"classes"`
}
