package video

import (
	"math"

	"github.com/jo-hoe/gotransform/internal/backend/database"
)

// FramesPerSecond is the clock shared by frame synthesis and encoding.
const FramesPerSecond = 30

type Resolution string

const (
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// Dimensions returns the canvas size of the preset; unknown presets fall back to 720p.
func (r Resolution) Dimensions() (int, int) {
	switch r {
	case Resolution480p:
		return 854, 480
	case Resolution1080p:
		return 1920, 1080
	default:
		return 1280, 720
	}
}

type Transition string

const (
	TransitionFade  Transition = "fade"
	TransitionSlide Transition = "slide"
	TransitionNone  Transition = "none"
)

// Settings configures one render. Transition is recorded but frames are cut hard.
type Settings struct {
	SecondsPerPhoto float64
	Transition      Transition
	Resolution      Resolution
	IncludeStats    bool
	// PhotoType limits the render to one pose; empty keeps every photo.
	PhotoType database.PhotoType
}

// FramesPerPhoto returns ceil(seconds * FramesPerSecond).
func FramesPerPhoto(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds * FramesPerSecond))
}
