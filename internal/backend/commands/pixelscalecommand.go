package commands

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/gotransform/internal/backend/commandstructure"
	"golang.org/x/image/draw"
)

// Scale modes.
const (
	// ScaleModeFit keeps both sides inside their bounds.
	ScaleModeFit = "fit"
	// ScaleModeOrientation caps only the width of landscape images and only
	// the height of portrait or square ones.
	ScaleModeOrientation = "orientation"
)

// PixelScaleParams bounds the output size; a nil side is unconstrained.
type PixelScaleParams struct {
	MaxWidth  *int
	MaxHeight *int
	Mode      string
}

func NewPixelScaleParamsFromMap(params map[string]any) (*PixelScaleParams, error) {
	mode := commandstructure.GetStringParam(params, "mode", ScaleModeFit)
	switch mode {
	case ScaleModeFit:
	case ScaleModeOrientation:
		if err := commandstructure.ValidateRequiredParams(params, []string{"maxWidth", "maxHeight"}); err != nil {
			return nil, fmt.Errorf("mode %s: %w", mode, err)
		}
	default:
		return nil, fmt.Errorf("unknown scale mode %q", mode)
	}

	_, hasWidth := params["maxWidth"]
	_, hasHeight := params["maxHeight"]
	if !hasWidth && !hasHeight {
		return nil, fmt.Errorf("at least one of 'maxWidth' or 'maxHeight' must be specified")
	}

	result := &PixelScaleParams{Mode: mode}
	if hasWidth {
		width := commandstructure.GetIntParam(params, "maxWidth", 0)
		if width <= 0 {
			return nil, fmt.Errorf("maxWidth must be positive, got %d", width)
		}
		result.MaxWidth = &width
	}
	if hasHeight {
		height := commandstructure.GetIntParam(params, "maxHeight", 0)
		if height <= 0 {
			return nil, fmt.Errorf("maxHeight must be positive, got %d", height)
		}
		result.MaxHeight = &height
	}
	return result, nil
}

// PixelScaleCommand shrinks an image to fit the configured bounds, keeping its aspect ratio.
// Images already inside the bounds are only re-encoded, never enlarged.
type PixelScaleCommand struct {
	name   string
	params *PixelScaleParams
}

func NewPixelScaleCommand(params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewPixelScaleParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &PixelScaleCommand{
		name:   "PixelScaleCommand",
		params: typedParams,
	}, nil
}

func (c *PixelScaleCommand) Name() string {
	return c.name
}

func (c *PixelScaleCommand) GetParams() *PixelScaleParams {
	return c.params
}

func (c *PixelScaleCommand) Execute(imageData []byte) ([]byte, error) {
	src, _, err := DecodeImage(imageData, 0, 0)
	if err != nil {
		slog.Error("PixelScaleCommand: failed to decode image", "error", err)
		return nil, err
	}

	bounds := src.Bounds()
	targetWidth, targetHeight := c.targetSize(bounds.Dx(), bounds.Dy())
	slog.Debug("PixelScaleCommand: scaling image",
		"mode", c.params.Mode,
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"target_width", targetWidth,
		"target_height", targetHeight)

	var out image.Image = src
	if targetWidth != bounds.Dx() || targetHeight != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		out = dst
	}

	encoded, err := encodePNG(out)
	if err != nil {
		slog.Error("PixelScaleCommand: failed to encode scaled image", "error", err)
		return nil, fmt.Errorf("failed to encode scaled PNG image: %w", err)
	}
	return encoded, nil
}

func (c *PixelScaleCommand) targetSize(width, height int) (int, int) {
	if c.params.Mode == ScaleModeOrientation {
		return fitOrientation(width, height, *c.params.MaxWidth, *c.params.MaxHeight)
	}
	return fitWithin(width, height, c.params.MaxWidth, c.params.MaxHeight)
}

// fitOrientation bounds the dominant side only, so a 1600x1400 image with
// 800x600 bounds becomes 800x700. It never enlarges.
func fitOrientation(width, height, maxWidth, maxHeight int) (int, int) {
	if width > height {
		if width <= maxWidth {
			return width, height
		}
		return maxWidth, max(1, int(float64(height)*float64(maxWidth)/float64(width)))
	}
	if height <= maxHeight {
		return width, height
	}
	return max(1, int(float64(width)*float64(maxHeight)/float64(height))), maxHeight
}

// fitWithin returns the largest size not exceeding the bounds that keeps the aspect ratio.
// It never enlarges and never returns a zero side.
func fitWithin(width, height int, maxWidth, maxHeight *int) (int, int) {
	scale := 1.0
	if maxWidth != nil && width > *maxWidth {
		scale = float64(*maxWidth) / float64(width)
	}
	if maxHeight != nil && float64(height)*scale > float64(*maxHeight) {
		scale = float64(*maxHeight) / float64(height)
	}
	if scale == 1.0 {
		return width, height
	}
	return max(1, int(float64(width)*scale)), max(1, int(float64(height)*scale))
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("PixelScaleCommand", NewPixelScaleCommand); err != nil {
		panic(fmt.Sprintf("failed to register PixelScaleCommand: %v", err))
	}
}
