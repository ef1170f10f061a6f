package commands

import (
	"image/color"
	"testing"
)

func TestNewPixelScaleCommand_Params(t *testing.T) {
	tests := []struct {
		name       string
		params     map[string]any
		wantErr    bool
		wantWidth  *int
		wantHeight *int
	}{
		{name: "both", params: map[string]any{"maxWidth": 800, "maxHeight": 600}, wantWidth: intPtr(800), wantHeight: intPtr(600)},
		{name: "only width", params: map[string]any{"maxWidth": 320}, wantWidth: intPtr(320)},
		{name: "only height from JSON", params: map[string]any{"maxHeight": float64(240)}, wantHeight: intPtr(240)},
		{name: "none", params: map[string]any{}, wantErr: true},
		{name: "zero width", params: map[string]any{"maxWidth": 0}, wantErr: true},
		{name: "negative height", params: map[string]any{"maxHeight": -5}, wantErr: true},
		{name: "orientation mode", params: map[string]any{"mode": "orientation", "maxWidth": 800, "maxHeight": 600}, wantWidth: intPtr(800), wantHeight: intPtr(600)},
		{name: "orientation mode needs both bounds", params: map[string]any{"mode": "orientation", "maxWidth": 800}, wantErr: true},
		{name: "unknown mode", params: map[string]any{"mode": "stretch", "maxWidth": 800}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, err := NewPixelScaleCommand(tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			params := command.(*PixelScaleCommand).GetParams()
			if !sameIntPtr(params.MaxWidth, tt.wantWidth) || !sameIntPtr(params.MaxHeight, tt.wantHeight) {
				t.Errorf("unexpected params: %+v", params)
			}
		})
	}
}

func TestPixelScaleCommand_Execute(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		params     map[string]any
		wantW      int
		wantH      int
	}{
		{name: "landscape limited by width", srcW: 1600, srcH: 900, params: map[string]any{"maxWidth": 800, "maxHeight": 600}, wantW: 800, wantH: 450},
		{name: "portrait limited by height", srcW: 900, srcH: 1600, params: map[string]any{"maxWidth": 800, "maxHeight": 600}, wantW: 337, wantH: 600},
		{name: "already small", srcW: 200, srcH: 100, params: map[string]any{"maxWidth": 800}, wantW: 200, wantH: 100},
		{name: "thumbnail width only", srcW: 1000, srcH: 500, params: map[string]any{"maxWidth": 100}, wantW: 100, wantH: 50},
		{name: "fit caps both sides", srcW: 1600, srcH: 1400, params: map[string]any{"maxWidth": 800, "maxHeight": 600}, wantW: 685, wantH: 600},
		{name: "orientation landscape caps width only", srcW: 1600, srcH: 1400, params: orientationParams, wantW: 800, wantH: 700},
		{name: "orientation portrait caps height only", srcW: 1400, srcH: 1600, params: orientationParams, wantW: 525, wantH: 600},
		{name: "orientation square caps height", srcW: 1000, srcH: 1000, params: orientationParams, wantW: 600, wantH: 600},
		{name: "orientation already small", srcW: 700, srcH: 500, params: orientationParams, wantW: 700, wantH: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, err := NewPixelScaleCommand(tt.params)
			if err != nil {
				t.Fatalf("Failed to create command: %v", err)
			}
			result, err := command.Execute(jpegBytes(t, solidImage(tt.srcW, tt.srcH, color.RGBA{G: 128, A: 255})))
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			b := decodePNGBounds(t, result)
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, b.Dx(), b.Dy())
			}
		})
	}
}

func TestPixelScaleCommand_Execute_InvalidImage(t *testing.T) {
	command, err := NewPixelScaleCommand(map[string]any{"maxWidth": 10})
	if err != nil {
		t.Fatalf("Failed to create command: %v", err)
	}
	if _, err := command.Execute([]byte("garbage")); err == nil {
		t.Error("Expected error for invalid image data")
	}
}

var orientationParams = map[string]any{"mode": "orientation", "maxWidth": 800, "maxHeight": 600}

func intPtr(v int) *int { return &v }

func sameIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
