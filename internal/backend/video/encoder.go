package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"iter"
	"log/slog"
	"sync"
	"time"
)

// Recorder turns a stream of frames into encoded media. Encoded bytes are
// handed to the sink given to Start, possibly from another goroutine.
// Stop flushes the output and must be safe to call more than once.
type Recorder interface {
	Start(ctx context.Context, width, height, fps int, sink func([]byte)) error
	WriteFrame(frame *image.RGBA) error
	Stop() error
	MimeType() string
	Extension() string
}

// Media is a finished video.
type Media struct {
	Data      []byte
	MimeType  string
	Extension string
}

// Ticker paces frame delivery.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.ticker.C }
func (t *timeTicker) Stop()               { t.ticker.Stop() }

func NewTimeTicker(interval time.Duration) Ticker {
	return &timeTicker{ticker: time.NewTicker(interval)}
}

var errNoFrames = errors.New("frame sequence is empty")

type Encoder struct {
	recorder  Recorder
	newTicker func(time.Duration) Ticker
}

func NewEncoder(recorder Recorder) *Encoder {
	return &Encoder{recorder: recorder, newTicker: NewTimeTicker}
}

// WithTicker replaces the wall-clock ticker.
func (e *Encoder) WithTicker(newTicker func(time.Duration) Ticker) *Encoder {
	e.newTicker = newTicker
	return e
}

// Encode writes one frame per tick of a 1/FramesPerSecond clock, stops the
// recorder right after the last frame and returns the concatenated output.
// On any error the recorder is stopped and no media is returned.
func (e *Encoder) Encode(ctx context.Context, frames iter.Seq2[Frame, error], width, height int, progress ProgressFunc) (*Media, error) {
	var (
		mu  sync.Mutex
		out bytes.Buffer
	)
	sink := func(chunk []byte) {
		mu.Lock()
		defer mu.Unlock()
		out.Write(chunk)
	}

	if err := e.recorder.Start(ctx, width, height, FramesPerSecond, sink); err != nil {
		return nil, fmt.Errorf("failed to start recorder: %w", err)
	}
	abort := func(err error) (*Media, error) {
		if stopErr := e.recorder.Stop(); stopErr != nil {
			slog.Warn("Encoder: failed to stop recorder after error", "error", stopErr)
		}
		return nil, err
	}

	ticker := e.newTicker(time.Second / FramesPerSecond)
	defer ticker.Stop()

	written := 0
	for frame, err := range frames {
		if err != nil {
			return abort(err)
		}
		select {
		case <-ctx.Done():
			return abort(ctx.Err())
		case <-ticker.C():
		}
		if err := e.recorder.WriteFrame(frame.Image); err != nil {
			return abort(fmt.Errorf("failed to write frame %d: %w", frame.Index, err))
		}
		written++
	}
	if written == 0 {
		return abort(errNoFrames)
	}

	if err := e.recorder.Stop(); err != nil {
		return nil, fmt.Errorf("failed to finalize video: %w", err)
	}
	if progress != nil {
		progress(ProgressDone)
	}
	slog.Debug("Encoder: video finalized", "frames", written, "bytes", out.Len(), "mime_type", e.recorder.MimeType())

	mu.Lock()
	defer mu.Unlock()
	return &Media{
		Data:      bytes.Clone(out.Bytes()),
		MimeType:  e.recorder.MimeType(),
		Extension: e.recorder.Extension(),
	}, nil
}
