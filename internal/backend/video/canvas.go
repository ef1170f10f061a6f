package video

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// containRect places a srcW x srcH image inside the canvas without cropping.
// Wider images span the canvas width and are centred vertically, all others
// span the height and are centred horizontally.
func containRect(srcW, srcH, canvasW, canvasH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rectangle{}
	}
	srcAspect := float64(srcW) / float64(srcH)
	canvasAspect := float64(canvasW) / float64(canvasH)

	scaledW, scaledH := canvasW, canvasH
	if srcAspect > canvasAspect {
		scaledH = int(float64(canvasW) / srcAspect)
	} else {
		scaledW = int(float64(canvasH) * srcAspect)
	}
	offsetX := (canvasW - scaledW) / 2
	offsetY := (canvasH - scaledH) / 2
	return image.Rect(offsetX, offsetY, offsetX+scaledW, offsetY+scaledH)
}

func newCanvas(w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	return canvas
}

// drawContained scales src onto the canvas with contain placement.
func drawContained(canvas *image.RGBA, src image.Image) {
	bounds := src.Bounds()
	target := containRect(bounds.Dx(), bounds.Dy(), canvas.Bounds().Dx(), canvas.Bounds().Dy())
	if target.Empty() {
		return
	}
	draw.CatmullRom.Scale(canvas, target, src, bounds, draw.Over, nil)
}
