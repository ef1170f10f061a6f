package video

import (
	"errors"
	"fmt"
	"image"
	"iter"
	"log/slog"

	"github.com/jo-hoe/gotransform/internal/backend/commands"
	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/common"
)

var ErrNoPhotos = errors.New("no photos to render")

// Progress milestones reported while frames are produced.
const (
	ProgressSetup    = 10
	ProgressCanvas   = 20
	ProgressDecoded  = 40
	ProgressRendered = 80
	ProgressDone     = 100
)

type ProgressFunc func(percent int)

// Frame is one raster of the output video. Consecutive frames of the same
// photo share one Image, which must not be modified.
type Frame struct {
	Index      int
	PhotoIndex int
	Image      *image.RGBA
	Progress   int
}

type Synthesizer struct {
	photos     []*database.Photo
	settings   Settings
	dateLayout string
	progress   ProgressFunc
}

// NewSynthesizer copies the photo list; the caller may pass photos in any order.
func NewSynthesizer(photos []*database.Photo, settings Settings, dateLayout string, progress ProgressFunc) *Synthesizer {
	if progress == nil {
		progress = func(int) {}
	}
	return &Synthesizer{
		photos:     append([]*database.Photo(nil), photos...),
		settings:   settings,
		dateLayout: dateLayout,
		progress:   progress,
	}
}

// Size returns the canvas dimensions of the configured resolution.
func (s *Synthesizer) Size() (int, int) {
	return s.settings.Resolution.Dimensions()
}

// Selected returns the photos that will be rendered, oldest first.
func (s *Synthesizer) Selected() []*database.Photo {
	selected := make([]*database.Photo, 0, len(s.photos))
	for _, photo := range s.photos {
		if photo == nil {
			continue
		}
		if s.settings.PhotoType != "" && photo.Type != s.settings.PhotoType {
			continue
		}
		selected = append(selected, photo)
	}
	database.SortByDateAsc(selected)
	return selected
}

// Frames yields every frame of the video in order. Each call starts over.
// All photos are decoded before the first frame, so a decode error is
// reported before anything is yielded.
func (s *Synthesizer) Frames() iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		photos := s.Selected()
		if len(photos) == 0 {
			yield(Frame{}, ErrNoPhotos)
			return
		}
		framesPerPhoto := FramesPerPhoto(s.settings.SecondsPerPhoto)
		if framesPerPhoto == 0 {
			yield(Frame{}, fmt.Errorf("seconds per photo must be positive, got %v", s.settings.SecondsPerPhoto))
			return
		}
		s.progress(ProgressSetup)

		width, height := s.Size()
		s.progress(ProgressCanvas)

		sources := make([]image.Image, len(photos))
		for i, photo := range photos {
			img, err := decodePhoto(photo, width, height)
			if err != nil {
				yield(Frame{}, err)
				return
			}
			sources[i] = img
		}
		s.progress(ProgressDecoded)

		index := 0
		for i, photo := range photos {
			percent := ProgressDecoded + i*(ProgressRendered-ProgressDecoded)/len(photos)
			s.progress(percent)

			raster, err := s.render(sources[i], photo, width, height)
			if err != nil {
				yield(Frame{}, err)
				return
			}
			for range framesPerPhoto {
				if !yield(Frame{Index: index, PhotoIndex: i, Image: raster, Progress: percent}, nil) {
					return
				}
				index++
			}
		}
		slog.Debug("Synthesizer: all frames produced", "frames", index, "photos", len(photos), "width", width, "height", height)
		s.progress(ProgressRendered)
	}
}

func (s *Synthesizer) render(src image.Image, photo *database.Photo, width, height int) (*image.RGBA, error) {
	canvas := newCanvas(width, height)
	drawContained(canvas, src)
	if s.settings.IncludeStats {
		if err := drawLabel(canvas, Label(photo, s.dateLayout)); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func decodePhoto(photo *database.Photo, width, height int) (image.Image, error) {
	data, _, err := common.DecodeDataURI(photo.FileData)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data of photo %s: %w", photo.ID, err)
	}
	img, _, err := commands.DecodeImage(data, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo %s: %w", photo.ID, err)
	}
	return img, nil
}
