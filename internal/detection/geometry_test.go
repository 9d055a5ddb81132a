package detection

import (
	"math"
	"testing"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		a        Box
		b        Box
		format   Format
		expected float64
	}{
		{
			name:     "identical boxes",
			a:        Box{0, 0, 10, 10},
			b:        Box{0, 0, 10, 10},
			format:   Corners,
			expected: 1.0,
		},
		{
			name:     "no overlap",
			a:        Box{0, 0, 10, 10},
			b:        Box{20, 20, 30, 30},
			format:   Corners,
			expected: 0.0,
		},
		{
			name:     "touching edges",
			a:        Box{0, 0, 10, 10},
			b:        Box{10, 0, 20, 10},
			format:   Corners,
			expected: 0.0,
		},
		{
			name:     "partial overlap",
			a:        Box{0, 0, 10, 10},
			b:        Box{5, 5, 15, 15},
			format:   Corners,
			expected: 25.0 / 175.0, // intersection=25, union=100+100-25=175
		},
		{
			name:     "one inside other",
			a:        Box{0, 0, 20, 20},
			b:        Box{5, 5, 15, 15},
			format:   Corners,
			expected: 100.0 / 400.0,
		},
		{
			name:     "midpoint partial overlap",
			a:        Box{5, 5, 10, 10},
			b:        Box{10, 10, 10, 10},
			format:   Midpoint,
			expected: 25.0 / 175.0,
		},
		{
			name:     "midpoint normalized identical",
			a:        Box{0.5, 0.5, 0.2, 0.4},
			b:        Box{0.5, 0.5, 0.2, 0.4},
			format:   Midpoint,
			expected: 1.0,
		},
		{
			name:     "midpoint disjoint",
			a:        Box{0.1, 0.1, 0.1, 0.1},
			b:        Box{0.9, 0.9, 0.1, 0.1},
			format:   Midpoint,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IoU(tt.a, tt.b, tt.format)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("IoU(%v, %v) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestIoU_Symmetric(t *testing.T) {
	boxes := []Box{
		{0, 0, 10, 10},
		{5, 5, 15, 15},
		{2, 3, 7, 9},
		{20, 20, 30, 30},
		{0, 0, 20, 20},
	}

	for _, a := range boxes {
		for _, b := range boxes {
			ab := IoU(a, b, Corners)
			ba := IoU(b, a, Corners)
			if ab != ba {
				t.Errorf("IoU not symmetric for %v and %v: %v != %v", a, b, ab, ba)
			}
		}
	}
}

func TestIoU_NeverNegative(t *testing.T) {
	// Far apart boxes would give a negative intersection without the zero floor.
	result := IoU(Box{0, 0, 1, 1}, Box{100, 100, 101, 101}, Corners)
	if result != 0 {
		t.Errorf("expected 0 for disjoint boxes, got %v", result)
	}
}

func TestToCornersAndMidpoint(t *testing.T) {
	mid := Box{0.5, 0.4, 0.2, 0.4}
	corners := ToCorners(mid, Midpoint)
	expected := Box{0.4, 0.2, 0.6, 0.6}
	for i := range corners {
		if math.Abs(corners[i]-expected[i]) > 1e-9 {
			t.Fatalf("ToCorners() = %v, want %v", corners, expected)
		}
	}

	back := ToMidpoint(corners, Corners)
	for i := range back {
		if math.Abs(back[i]-mid[i]) > 1e-9 {
			t.Fatalf("ToMidpoint() = %v, want %v", back, mid)
		}
	}

	if ToCorners(corners, Corners) != corners {
		t.Error("ToCorners() should not change a corners box")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"midpoint", Midpoint, false},
		{"MIDPOINT", Midpoint, false},
		{"corners", Corners, false},
		{" corner ", Corners, false},
		{"xywh", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestScaleToPixels(t *testing.T) {
	result := ScaleToPixels(Box{0.1, 0.2, 0.3, 0.4}, 1000, 500)
	expected := Box{100, 100, 300, 200}
	for i := range result {
		if math.Abs(result[i]-expected[i]) > 1e-9 {
			t.Fatalf("ScaleToPixels() = %v, want %v", result, expected)
		}
	}

	if got := ScaleToPixels(Box{1, 2, 3, 4}, 0, 10); got != (Box{1, 2, 3, 4}) {
		t.Errorf("ScaleToPixels() with zero width = %v, want input unchanged", got)
	}
}

func TestArea(t *testing.T) {
	if got := Area(Box{0, 0, 4, 5}, Corners); got != 20 {
		t.Errorf("Area(corners) = %v, want 20", got)
	}
	if got := Area(Box{1, 1, 2, 3}, Midpoint); math.Abs(got-6) > 1e-9 {
		t.Errorf("Area(midpoint) = %v, want 6", got)
	}
	// Inverted corners still report a positive area.
	if got := Area(Box{4, 5, 0, 0}, Corners); got != 20 {
		t.Errorf("Area(inverted) = %v, want 20", got)
	}
}
