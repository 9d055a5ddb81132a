// Package faces reads the output of a RetinaFace style face detector.
package faces

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kozaktomas/faceval/internal/detection"
)

// Face is a single detected face.
type Face struct {
	Key       string                `json:"-"`
	Score     float64               `json:"score"`
	Area      [4]float64            `json:"facial_area"` // [x1, y1, x2, y2] in pixels
	Landmarks map[string][2]float64 `json:"landmarks"`
}

// Box returns the facial area as a corners box.
func (f Face) Box() detection.Box {
	return detection.Box(f.Area)
}

// Rect returns the facial area as integer pixel rectangle.
func (f Face) Rect() image.Rectangle {
	return image.Rect(int(f.Area[0]), int(f.Area[1]), int(f.Area[2]), int(f.Area[3]))
}

// ReadDetections loads a detector output file of the form
// {"face_1": {"score": .., "facial_area": [..], "landmarks": {..}}, ...}.
func ReadDetections(path string) ([]Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detections: %w", err)
	}
	faces, err := ParseDetections(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return faces, nil
}

// ParseDetections decodes detector output. Faces are ordered by the number in
// their key so that face_2 comes before face_10.
func ParseDetections(data []byte) ([]Face, error) {
	var raw map[string]Face
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse detections: %w", err)
	}

	faces := make([]Face, 0, len(raw))
	for key, f := range raw {
		f.Key = key
		faces = append(faces, f)
	}

	sort.Slice(faces, func(i, j int) bool {
		ni, oki := keyIndex(faces[i].Key)
		nj, okj := keyIndex(faces[j].Key)
		if oki && okj && ni != nj {
			return ni < nj
		}
		if oki != okj {
			return oki
		}
		return faces[i].Key < faces[j].Key
	})

	return faces, nil
}

func keyIndex(key string) (int, bool) {
	i := strings.LastIndexByte(key, '_')
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Crop returns a copy of the face region, clipped to the image bounds.
func Crop(img image.Image, area [4]float64) (*image.RGBA, error) {
	r := image.Rect(
		int(math.Floor(area[0])), int(math.Floor(area[1])),
		int(math.Ceil(area[2])), int(math.Ceil(area[3])),
	).Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("face area %v is outside the image %v", area, img.Bounds())
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// ToDetections converts detector output for one image into scored class 0 detections.
func ToDetections(imageID string, faces []Face) []detection.Detection {
	dets := make([]detection.Detection, len(faces))
	for i, f := range faces {
		dets[i] = detection.Detection{
			ImageID: imageID,
			ClassID: 0,
			Score:   f.Score,
			Box:     f.Box(),
		}
	}
	return dets
}
