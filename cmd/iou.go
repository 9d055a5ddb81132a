package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/detection"
)

var iouCmd = &cobra.Command{
	Use:   "iou <box1> <box2>",
	Short: "Compute the intersection over union of two boxes",
	Long: `Compute the intersection over union of two boxes given as four comma
separated numbers. With --format midpoint a box is cx,cy,w,h, with corners
it is x1,y1,x2,y2.

Examples:
  faceval iou 0.5,0.5,0.2,0.2 0.55,0.5,0.2,0.2
  faceval iou 10,10,50,50 30,30,70,70 --format corners`,
	Args: cobra.ExactArgs(2),
	RunE: runIoU,
}

func init() {
	rootCmd.AddCommand(iouCmd)

	iouCmd.Flags().String("format", string(detection.Midpoint), "Box format: midpoint or corners")
}

func runIoU(cmd *cobra.Command, args []string) error {
	format, err := detection.ParseFormat(mustGetString(cmd, "format"))
	if err != nil {
		return err
	}

	a, err := parseBox(args[0])
	if err != nil {
		return err
	}
	b, err := parseBox(args[1])
	if err != nil {
		return err
	}

	fmt.Printf("%.6f\n", detection.IoU(a, b, format))
	return nil
}

// parseBox parses "a,b,c,d" into a box.
func parseBox(s string) (detection.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return detection.Box{}, fmt.Errorf("box %q: expected 4 comma separated values, got %d", s, len(parts))
	}

	var box detection.Box
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return detection.Box{}, fmt.Errorf("box %q: invalid value %q", s, p)
		}
		box[i] = v
	}
	return box, nil
}
