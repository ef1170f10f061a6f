package video

import "fmt"

const (
	EncoderFFmpeg = "ffmpeg"
	EncoderGIF    = "gif"
)

// NewRecorder returns a fresh recorder of the given kind; recorders are single use.
func NewRecorder(kind, ffmpegPath string) (Recorder, error) {
	switch kind {
	case EncoderFFmpeg, "":
		return NewFFmpegRecorder(ffmpegPath), nil
	case EncoderGIF:
		return NewGIFRecorder(), nil
	default:
		return nil, fmt.Errorf("unsupported video encoder: %s", kind)
	}
}
