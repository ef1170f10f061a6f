package commands

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FormatSVG is reported by DecodeImage for rasterised SVG input.
const FormatSVG = "svg"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

func hasPngSignature(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// DecodeImage decodes any supported raster format or SVG. SVGs are rendered at their
// viewBox size, or at fallbackWidth x fallbackHeight when the viewBox is missing.
func DecodeImage(data []byte, fallbackWidth, fallbackHeight int) (image.Image, string, error) {
	if isSVGData(data) {
		img, err := rasterizeSVG(data, fallbackWidth, fallbackHeight)
		if err != nil {
			return nil, "", err
		}
		return img, FormatSVG, nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	b := img.Bounds()
	buf.Grow(b.Dx() * b.Dy())
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// isSVGData looks for an <svg> tag or the SVG namespace in the first 4KB.
func isSVGData(data []byte) bool {
	n := len(data)
	if n == 0 {
		return false
	}
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(data[:n])
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte("http://www.w3.org/2000/svg"))
}

func rasterizeSVG(data []byte, fallbackWidth, fallbackHeight int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = fallbackWidth, fallbackHeight
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("SVG has no viewBox and no fallback size is configured")
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// DetectMediaType sniffs the MIME type of encoded image bytes.
func DetectMediaType(data []byte) string {
	if isSVGData(data) {
		return "image/svg+xml"
	}
	return http.DetectContentType(data)
}
