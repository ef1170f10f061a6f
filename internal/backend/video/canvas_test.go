package video

import (
	"image"
	"image/color"
	"testing"
)

func TestContainRect(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		canvasW    int
		canvasH    int
		want       image.Rectangle
	}{
		{name: "wider than canvas", srcW: 2000, srcH: 500, canvasW: 1280, canvasH: 720, want: image.Rect(0, 200, 1280, 520)},
		{name: "taller than canvas", srcW: 600, srcH: 800, canvasW: 1280, canvasH: 720, want: image.Rect(370, 0, 910, 720)},
		{name: "same aspect", srcW: 640, srcH: 360, canvasW: 1280, canvasH: 720, want: image.Rect(0, 0, 1280, 720)},
		{name: "empty source", srcW: 0, srcH: 10, canvasW: 1280, canvasH: 720, want: image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := containRect(tt.srcW, tt.srcH, tt.canvasW, tt.canvasH)
			if got != tt.want {
				t.Errorf("containRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDrawContained_LeavesBarsBlack(t *testing.T) {
	canvas := newCanvas(100, 50)
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.White)
		}
	}

	drawContained(canvas, src)

	if r, _, _, _ := canvas.At(2, 25).RGBA(); r != 0 {
		t.Errorf("expected black side bar, got red=%d", r)
	}
	if r, _, _, _ := canvas.At(50, 25).RGBA(); r>>8 < 250 {
		t.Errorf("expected white centre, got red=%d", r>>8)
	}
}

func TestResolutionDimensions(t *testing.T) {
	tests := []struct {
		resolution Resolution
		wantW      int
		wantH      int
	}{
		{Resolution480p, 854, 480},
		{Resolution720p, 1280, 720},
		{Resolution1080p, 1920, 1080},
		{Resolution("4k"), 1280, 720},
		{Resolution(""), 1280, 720},
	}
	for _, tt := range tests {
		w, h := tt.resolution.Dimensions()
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("%q: got %dx%d, want %dx%d", tt.resolution, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFramesPerPhoto(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{1, 30},
		{2.5, 75},
		{0.01, 1},
		{0, 0},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := FramesPerPhoto(tt.seconds); got != tt.want {
			t.Errorf("FramesPerPhoto(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}
