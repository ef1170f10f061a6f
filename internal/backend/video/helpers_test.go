package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/common"
)

func solidPNGDataURI(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode error: %v", err)
	}
	return common.EncodeDataURI(buf.Bytes(), "image/png")
}

func testPhoto(t *testing.T, id string, date time.Time, photoType database.PhotoType, weight *float64) *database.Photo {
	t.Helper()
	return &database.Photo{
		ID:       id,
		Date:     date,
		Type:     photoType,
		Weight:   weight,
		Filename: id + ".png",
		FileData: solidPNGDataURI(t, 40, 30, color.White),
	}
}

func weight(v float64) *float64 { return &v }

// instantTicker fires immediately on every receive.
type instantTicker struct {
	ch chan time.Time
}

func newInstantTicker(time.Duration) Ticker {
	ch := make(chan time.Time)
	close(ch)
	return &instantTicker{ch: ch}
}

func (t *instantTicker) C() <-chan time.Time { return t.ch }
func (t *instantTicker) Stop()               {}

// fakeRecorder records every call and emits one chunk per frame.
type fakeRecorder struct {
	calls    []string
	frames   []*image.RGBA
	sink     func([]byte)
	startErr error
	// failAt makes the n-th WriteFrame (1-based) fail when positive.
	failAt int
}

func (f *fakeRecorder) Start(_ context.Context, width, height, fps int, sink func([]byte)) error {
	f.calls = append(f.calls, fmt.Sprintf("start %dx%d@%d", width, height, fps))
	if f.startErr != nil {
		return f.startErr
	}
	f.sink = sink
	return nil
}

func (f *fakeRecorder) WriteFrame(frame *image.RGBA) error {
	f.frames = append(f.frames, frame)
	if f.failAt > 0 && len(f.frames) == f.failAt {
		f.calls = append(f.calls, "write-error")
		return errors.New("disk full")
	}
	f.calls = append(f.calls, "write")
	f.sink([]byte{byte(len(f.frames))})
	return nil
}

func (f *fakeRecorder) Stop() error {
	f.calls = append(f.calls, "stop")
	return nil
}

func (f *fakeRecorder) MimeType() string  { return "video/test" }
func (f *fakeRecorder) Extension() string { return "tst" }
