package stego

import (
	"fmt"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
)

// CapacityResult is the payload capacity of a cover at one k.
type CapacityResult struct {
	Path           string  `json:"path,omitempty"`
	SourceWidth    int     `json:"source_width,omitempty"`
	SourceHeight   int     `json:"source_height,omitempty"`
	Scale          float64 `json:"scale,omitempty"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	BitsPerChannel int     `json:"bits_per_channel"`
	CapacityBits   int     `json:"capacity_bits"`
	CapacityBytes  int     `json:"capacity_bytes"`
}

// Capacity computes the capacity of a width x height buffer.
func Capacity(width, height, k int) (*CapacityResult, error) {
	if k < lsb.MinBitsPerChannel || k > lsb.MaxBitsPerChannel {
		return nil, fmt.Errorf("%w: bits per channel must be between %d and %d, got %d",
			lsb.ErrPrecondition, lsb.MinBitsPerChannel, lsb.MaxBitsPerChannel, k)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", lsb.ErrPrecondition, width, height)
	}
	return &CapacityResult{
		Width:          width,
		Height:         height,
		BitsPerChannel: k,
		CapacityBits:   lsb.CapacityBits(width, height, k),
		CapacityBytes:  lsb.CapacityBytes(width, height, k),
	}, nil
}

// CapacityForImage computes the capacity of the image at path after it is
// enlarged by scale. No resampling is done; only the output size is derived.
func CapacityForImage(cache *imaging.ImageCache, path string, k int, scale float64) (*CapacityResult, error) {
	if scale == 0 {
		scale = 1
	}
	dims, err := imaging.GetDimensions(cache, path)
	if err != nil {
		return nil, err
	}

	w, h, err := imaging.ScaledSize(dims.Width, dims.Height, scale)
	if err != nil {
		return nil, err
	}
	result, err := Capacity(w, h, k)
	if err != nil {
		return nil, err
	}
	result.Path = path
	result.SourceWidth = dims.Width
	result.SourceHeight = dims.Height
	result.Scale = scale
	return result, nil
}
