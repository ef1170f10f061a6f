package video

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"golang.org/x/image/font"
)

func TestLabel(t *testing.T) {
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		photo  *database.Photo
		layout string
		want   string
	}{
		{name: "date only", photo: &database.Photo{Date: date}, want: "05/03/2024"},
		{name: "with weight", photo: &database.Photo{Date: date, Weight: weight(88.5)}, want: "05/03/2024 - 88.5kg"},
		{name: "whole weight", photo: &database.Photo{Date: date, Weight: weight(90)}, want: "05/03/2024 - 90kg"},
		{name: "custom layout", photo: &database.Photo{Date: date}, layout: "2006-01-02", want: "2024-03-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.photo, tt.layout); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFontSize(t *testing.T) {
	if got := fontSize(854); math.Abs(got-17.08) > 1e-9 {
		t.Errorf("fontSize(854) = %v, want 17.08", got)
	}
	if got := fontSize(320); got != minFontSize {
		t.Errorf("fontSize(320) = %v, want %v", got, minFontSize)
	}
}

func TestLabelLayout(t *testing.T) {
	origin, box := labelLayout(100, 25.6, 1280, 720)
	if origin != image.Pt(1160, 700) {
		t.Errorf("origin = %v, want (1160,700)", origin)
	}
	want := image.Rect(1150, 675, 1270, 710)
	if box != want {
		t.Errorf("box = %v, want %v", box, want)
	}
}

func TestDrawLabel_DarkensBackground(t *testing.T) {
	canvas := newCanvas(1280, 720)
	for i := range canvas.Pix {
		canvas.Pix[i] = 0xff
	}

	text := "05/03/2024 - 88.5kg"
	if err := drawLabel(canvas, text); err != nil {
		t.Fatalf("drawLabel() error: %v", err)
	}

	face, size, err := newLabelFace(1280)
	if err != nil {
		t.Fatalf("newLabelFace() error: %v", err)
	}
	defer func() {
		_ = face.Close()
	}()
	_, box := labelLayout(font.MeasureString(face, text).Ceil(), size, 1280, 720)

	// inside the padding, left of the text
	if r, _, _, _ := canvas.At(box.Min.X+2, box.Max.Y-2).RGBA(); r>>8 > 100 {
		t.Errorf("expected darkened background, got red=%d", r>>8)
	}
	// outside the box
	if r, _, _, _ := canvas.At(box.Min.X-5, box.Max.Y-2).RGBA(); r>>8 != 0xff {
		t.Errorf("expected untouched pixel outside the label, got red=%d", r>>8)
	}
}
