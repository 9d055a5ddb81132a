package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceval/internal/constants"
	"github.com/kozaktomas/faceval/internal/labels"
)

var convertCmd = &cobra.Command{
	Use:   "convert [image...]",
	Short: "Convert LabelMe annotations to YOLO label files",
	Long: `Convert LabelMe JSON annotations into YOLO label files, one line per shape
using the bounding box of its points.

Without arguments every *.json file in the markup directory is converted.
With image names only their annotations are converted; the annotation of
photo.2024.jpg is photo.json.

Examples:
  faceval convert --markup annotations/ --out labels/
  faceval convert --markup annotations/ --out labels/ --class 2 img_001.jpg img_002.jpg`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("markup", "", "Directory of LabelMe JSON files (required)")
	convertCmd.Flags().String("out", "", "Directory for the YOLO label files (required)")
	convertCmd.Flags().Int("class", 0, "Class id written for every shape")
	convertCmd.Flags().Bool("json", false, "Output as JSON")
	_ = convertCmd.MarkFlagRequired("markup")
	_ = convertCmd.MarkFlagRequired("out")
}

// ConvertedFile describes one written label file
type ConvertedFile struct {
	Markup string `json:"markup"`
	Labels string `json:"labels"`
	Boxes  int    `json:"boxes"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	markupDir := mustGetString(cmd, "markup")
	outDir := mustGetString(cmd, "out")
	class := mustGetInt(cmd, "class")
	jsonOutput := mustGetBool(cmd, "json")

	paths := make([]string, 0, len(args))
	for _, name := range args {
		paths = append(paths, labels.MarkupPath(markupDir, name))
	}
	if len(paths) == 0 {
		var err error
		if paths, err = listMarkup(markupDir); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outDir, constants.OutputDirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bar := newProgressBar(len(paths), "Converting annotations", "files", jsonOutput)
	converted := make([]ConvertedFile, 0, len(paths))
	boxes := 0
	for _, path := range paths {
		m, err := labels.ReadMarkupFile(path)
		if err != nil {
			return err
		}
		ls, err := labels.MarkupToLabels(m, class)
		if err != nil {
			return err
		}

		out := filepath.Join(outDir, labels.ImageID(path)+".txt")
		if err := labels.WriteLabelFile(out, ls); err != nil {
			return err
		}
		converted = append(converted, ConvertedFile{Markup: path, Labels: out, Boxes: len(ls)})
		boxes += len(ls)
		advance(bar)
	}

	if jsonOutput {
		return outputJSON(converted)
	}
	fmt.Printf("Wrote %s with %s to %s\n",
		english.Plural(len(converted), "label file", "label files"),
		english.Plural(boxes, "box", "boxes"), outDir)
	return nil
}

// listMarkup returns the LabelMe files in dir sorted by name.
func listMarkup(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read markup directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
