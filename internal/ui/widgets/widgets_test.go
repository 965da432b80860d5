package widgets

import (
	"image/color"
	"testing"
)

func TestFitScale(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH float32
		want       float32
	}{
		{"width bound", 10, 5, 100, 100, 10},
		{"height bound", 5, 10, 100, 50, 5},
		{"square", 4, 4, 80, 80, 20},
		{"empty space", 0, 4, 80, 80, 1},
		{"no room", 4, 4, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitScale(tt.w, tt.h, tt.maxW, tt.maxH); got != tt.want {
				t.Errorf("FitScale(%d, %d, %v, %v) = %v, want %v", tt.w, tt.h, tt.maxW, tt.maxH, got, tt.want)
			}
		})
	}
}

func TestToNRGBA(t *testing.T) {
	got := ToNRGBA(color.RGBA{R: 1, G: 2, B: 3, A: 255})
	want := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	if got != want {
		t.Errorf("ToNRGBA = %v, want %v", got, want)
	}
}
