package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Processor downsizes images before they are stored.
type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{
		quality: quality,
	}
}

// FitWithin decodes a JPEG or PNG and, if either side exceeds maxDim, scales
// it down so the longer side equals maxDim. The output keeps the input format.
// resized is false when the image already fit; the returned reader then holds
// the original bytes unchanged.
func (p *Processor) FitWithin(reader io.Reader, maxDim int) (out io.Reader, resized bool, err error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}
	if format != "jpeg" && format != "png" {
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	width, height, ok := fitDimensions(cfg.Width, cfg.Height, maxDim)
	if !ok {
		return bytes.NewReader(data), false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality})
	case "png":
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return &buf, true, nil
}

// fitDimensions returns the scaled size, or ok=false if no scaling is needed.
func fitDimensions(width, height, maxDim int) (int, int, bool) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return width, height, false
	}
	if width >= height {
		h := height * maxDim / width
		if h < 1 {
			h = 1
		}
		return maxDim, h, true
	}
	w := width * maxDim / height
	if w < 1 {
		w = 1
	}
	return w, maxDim, true
}

// GetImageDimensions returns the dimensions of an image
func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
