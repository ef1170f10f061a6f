package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

const ffmpegChunkSize = 64 * 1024

// FFmpegRecorder pipes raw RGBA frames into an ffmpeg process and collects
// fragmented MP4 (H.264) from its stdout.
type FFmpegRecorder struct {
	path   string
	width  int
	height int

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	drained chan error
	stopped bool
}

func NewFFmpegRecorder(path string) *FFmpegRecorder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegRecorder{path: path}
}

func (f *FFmpegRecorder) args(fps int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", f.width, f.height),
		"-r", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "frag_keyframe+empty_moov",
		"-f", "mp4",
		"pipe:1",
	}
}

func (f *FFmpegRecorder) Start(ctx context.Context, width, height, fps int, sink func([]byte)) error {
	if f.cmd != nil {
		return errors.New("ffmpeg recorder already started")
	}
	f.width, f.height = width, height

	cmd := exec.CommandContext(ctx, f.path, f.args(fps)...)
	cmd.Stderr = &f.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", f.path, err)
	}
	f.cmd = cmd
	f.stdin = stdin
	f.drained = make(chan error, 1)

	go func() {
		buf := make([]byte, ffmpegChunkSize)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				sink(bytes.Clone(buf[:n]))
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				f.drained <- err
				return
			}
		}
	}()
	slog.Debug("FFmpegRecorder: process started", "path", f.path, "width", width, "height", height, "fps", fps)
	return nil
}

func (f *FFmpegRecorder) WriteFrame(frame *image.RGBA) error {
	if f.cmd == nil || f.stopped {
		return errors.New("ffmpeg recorder is not running")
	}
	bounds := frame.Bounds()
	if bounds.Dx() != f.width || bounds.Dy() != f.height {
		return fmt.Errorf("frame is %dx%d, expected %dx%d", bounds.Dx(), bounds.Dy(), f.width, f.height)
	}
	rowBytes := 4 * f.width
	if frame.Stride == rowBytes {
		_, err := f.stdin.Write(frame.Pix[:rowBytes*f.height])
		return err
	}
	for y := 0; y < f.height; y++ {
		start := y * frame.Stride
		if _, err := f.stdin.Write(frame.Pix[start : start+rowBytes]); err != nil {
			return err
		}
	}
	return nil
}

// Stop closes stdin, waits for ffmpeg to flush its output and exit.
func (f *FFmpegRecorder) Stop() error {
	if f.cmd == nil || f.stopped {
		return nil
	}
	f.stopped = true
	closeErr := f.stdin.Close()
	drainErr := <-f.drained
	waitErr := f.cmd.Wait()
	if waitErr != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", waitErr, bytes.TrimSpace(f.stderr.Bytes()))
	}
	if drainErr != nil {
		return fmt.Errorf("failed to read ffmpeg output: %w", drainErr)
	}
	return closeErr
}

func (f *FFmpegRecorder) MimeType() string { return "video/mp4" }

func (f *FFmpegRecorder) Extension() string { return "mp4" }
