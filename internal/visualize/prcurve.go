package visualize

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kozaktomas/faceval/internal/detection"
)

// SavePRCurves plots the precision-recall curve of every scored class.
// The file format follows the extension of path (png, svg, pdf, ...).
func SavePRCurves(report detection.Report, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Precision-Recall (IoU > %.2f, mAP %.4f)", report.IoUThreshold, report.MAP)
	p.X.Label.Text = "Recall"
	p.Y.Label.Text = "Precision"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1.05

	colors := Palette(len(report.Classes))
	for i, cr := range report.Classes {
		pts := make(plotter.XYs, len(cr.Curve))
		for j, pt := range cr.Curve {
			pts[j] = plotter.XY{X: pt.Recall, Y: pt.Precision}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("class %d: %w", cr.ClassID, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("class %d (AP %.4f)", cr.ClassID, cr.AP), line)
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = false
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = 10

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}

	log.Infof("visualize: saved precision-recall curves to %s", path)
	return nil
}
