package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"math"

	"golang.org/x/image/draw"
)

// GIFRecorder encodes an animated GIF in process. Repeated frames are merged
// into one image with a longer delay.
type GIFRecorder struct {
	fps     int
	sink    func([]byte)
	last    *image.RGBA
	images  []*image.Paletted
	counts  []int
	started bool
	stopped bool
}

func NewGIFRecorder() *GIFRecorder {
	return &GIFRecorder{}
}

func (g *GIFRecorder) Start(_ context.Context, _, _, fps int, sink func([]byte)) error {
	if g.started {
		return errors.New("gif recorder already started")
	}
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %d", fps)
	}
	g.fps = fps
	g.sink = sink
	g.started = true
	return nil
}

func (g *GIFRecorder) WriteFrame(frame *image.RGBA) error {
	if !g.started || g.stopped {
		return errors.New("gif recorder is not running")
	}
	if frame == g.last && len(g.counts) > 0 {
		g.counts[len(g.counts)-1]++
		return nil
	}
	paletted := image.NewPaletted(frame.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, frame.Bounds().Min)
	g.images = append(g.images, paletted)
	g.counts = append(g.counts, 1)
	g.last = frame
	return nil
}

func (g *GIFRecorder) Stop() error {
	if !g.started || g.stopped {
		return nil
	}
	g.stopped = true
	if len(g.images) == 0 {
		return nil
	}

	anim := &gif.GIF{Image: g.images, Delay: g.delays()}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	g.sink(buf.Bytes())
	return nil
}

// delays converts frame counts to hundredths of a second without drifting.
func (g *GIFRecorder) delays() []int {
	delays := make([]int, len(g.counts))
	frames, elapsed := 0, 0
	for i, count := range g.counts {
		frames += count
		end := int(math.Round(float64(frames) * 100 / float64(g.fps)))
		delays[i] = end - elapsed
		elapsed = end
	}
	return delays
}

func (g *GIFRecorder) MimeType() string { return "image/gif" }

func (g *GIFRecorder) Extension() string { return "gif" }
