package video

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"testing"
)

func TestGIFRecorder_MergesRepeatedFrames(t *testing.T) {
	var out bytes.Buffer
	recorder := NewGIFRecorder()
	if err := recorder.Start(context.Background(), 4, 4, 30, func(b []byte) { out.Write(b) }); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	first := image.NewRGBA(image.Rect(0, 0, 4, 4))
	second := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for range 30 {
		if err := recorder.WriteFrame(first); err != nil {
			t.Fatalf("WriteFrame() error: %v", err)
		}
	}
	for range 45 {
		if err := recorder.WriteFrame(second); err != nil {
			t.Fatalf("WriteFrame() error: %v", err)
		}
	}
	if err := recorder.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := recorder.Stop(); err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}

	decoded, err := gif.DecodeAll(&out)
	if err != nil {
		t.Fatalf("output is not a GIF: %v", err)
	}
	if len(decoded.Image) != 2 {
		t.Fatalf("expected 2 images, got %d", len(decoded.Image))
	}
	if decoded.Delay[0] != 100 || decoded.Delay[1] != 150 {
		t.Errorf("delays = %v, want [100 150]", decoded.Delay)
	}
}

func TestGIFRecorder_RejectsWritesWhenNotRunning(t *testing.T) {
	recorder := NewGIFRecorder()
	if err := recorder.WriteFrame(image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error before Start")
	}
	if err := recorder.Start(context.Background(), 1, 1, 0, func([]byte) {}); err == nil {
		t.Error("expected error for zero fps")
	}
}

func TestNewRecorder(t *testing.T) {
	tests := []struct {
		kind    string
		wantExt string
		wantErr bool
	}{
		{kind: "", wantExt: "mp4"},
		{kind: EncoderFFmpeg, wantExt: "mp4"},
		{kind: EncoderGIF, wantExt: "gif"},
		{kind: "webm", wantErr: true},
	}
	for _, tt := range tests {
		recorder, err := NewRecorder(tt.kind, "")
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.kind)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.kind, err)
		}
		if recorder.Extension() != tt.wantExt {
			t.Errorf("%q: extension = %s, want %s", tt.kind, recorder.Extension(), tt.wantExt)
		}
	}
}

func TestFFmpegRecorder_MissingBinary(t *testing.T) {
	recorder := NewFFmpegRecorder("/nonexistent/ffmpeg-binary")
	if err := recorder.Start(context.Background(), 2, 2, 30, func([]byte) {}); err == nil {
		t.Fatal("expected error for missing binary")
	}
	if err := recorder.Stop(); err != nil {
		t.Errorf("Stop() after failed start should be a no-op, got %v", err)
	}
}
