package video

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultDateLayout renders dates as dd/mm/yyyy.
const DefaultDateLayout = "02/01/2006"

const (
	labelMargin  = 20
	labelPadding = 10
	minFontSize  = 16.0
)

var labelBackground = color.NRGBA{A: 179}

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// Label returns the overlay text for a photo: the date plus " - <weight>kg" when known.
func Label(photo *database.Photo, dateLayout string) string {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	text := photo.Date.In(time.UTC).Format(dateLayout)
	if photo.Weight != nil {
		text += fmt.Sprintf(" - %skg", strconv.FormatFloat(*photo.Weight, 'f', -1, 64))
	}
	return text
}

func fontSize(canvasWidth int) float64 {
	return math.Max(minFontSize, float64(canvasWidth)*0.02)
}

func newLabelFace(canvasWidth int) (font.Face, float64, error) {
	parsed, err := boldFont()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse overlay font: %w", err)
	}
	size := fontSize(canvasWidth)
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create overlay font face: %w", err)
	}
	return face, size, nil
}

// labelLayout returns the text baseline origin and the background box for a
// label anchored to the bottom-right corner.
func labelLayout(textWidth int, size float64, canvasW, canvasH int) (image.Point, image.Rectangle) {
	origin := image.Pt(canvasW-textWidth-labelMargin, canvasH-labelMargin)
	top := origin.Y - int(size)
	box := image.Rect(
		origin.X-labelPadding,
		top,
		origin.X-labelPadding+textWidth+2*labelPadding,
		top+int(size)+labelPadding,
	)
	return origin, box
}

func drawLabel(canvas *image.RGBA, text string) error {
	bounds := canvas.Bounds()
	face, size, err := newLabelFace(bounds.Dx())
	if err != nil {
		return err
	}
	defer func() {
		_ = face.Close()
	}()

	textWidth := font.MeasureString(face, text).Ceil()
	origin, box := labelLayout(textWidth, size, bounds.Dx(), bounds.Dy())

	draw.Draw(canvas, box, &image.Uniform{C: labelBackground}, image.Point{}, draw.Over)
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	drawer.DrawString(text)
	return nil
}
