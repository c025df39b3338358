package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DistortionResult measures how far a stego image departs from its cover.
type DistortionResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// ChangedBytes counts color channel bytes that differ.
	ChangedBytes int `json:"changed_bytes"`

	// ChangedPixels counts pixels with at least one differing channel.
	ChangedPixels int `json:"changed_pixels"`

	// AlphaChanged counts pixels whose alpha differs. Always 0 for output of
	// the codec.
	AlphaChanged int `json:"alpha_changed"`

	// MaxChannelDelta is the largest absolute difference of any color byte.
	MaxChannelDelta int `json:"max_channel_delta"`

	// MSE is the mean squared error over the R, G and B channels.
	MSE float64 `json:"mse"`

	// PSNR in decibels over the R, G and B channels. Omitted when the images
	// are identical.
	PSNR *float64 `json:"psnr_db,omitempty"`

	// MeanLabDistance and MaxLabDistance are CIE Lab distances between
	// corresponding pixels. A distance below about 0.01 is invisible.
	MeanLabDistance float64 `json:"mean_lab_distance"`
	MaxLabDistance  float64 `json:"max_lab_distance"`
}

// Distortion compares a cover image with a stego image of the same size.
func Distortion(cover, stego image.Image) (*DistortionResult, error) {
	cb, sb := cover.Bounds(), stego.Bounds()
	if cb.Dx() != sb.Dx() || cb.Dy() != sb.Dy() {
		return nil, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", cb.Dx(), cb.Dy(), sb.Dx(), sb.Dy())
	}
	if cb.Dx() == 0 || cb.Dy() == 0 {
		return nil, fmt.Errorf("images have no pixels")
	}

	a, b := ToNRGBA(cover), ToNRGBA(stego)
	result := &DistortionResult{Width: cb.Dx(), Height: cb.Dy()}

	var sqSum, labSum float64
	for i := 0; i+3 < len(a.Pix); i += 4 {
		pixelChanged := false
		for c := 0; c < 3; c++ {
			d := int(a.Pix[i+c]) - int(b.Pix[i+c])
			if d == 0 {
				continue
			}
			pixelChanged = true
			result.ChangedBytes++
			if d < 0 {
				d = -d
			}
			result.MaxChannelDelta = max(result.MaxChannelDelta, d)
			sqSum += float64(d * d)
		}
		if a.Pix[i+3] != b.Pix[i+3] {
			result.AlphaChanged++
		}
		if !pixelChanged {
			continue
		}
		result.ChangedPixels++

		dist := toColorful(a.Pix[i : i+3]).DistanceLab(toColorful(b.Pix[i : i+3]))
		labSum += dist
		result.MaxLabDistance = max(result.MaxLabDistance, dist)
	}

	pixels := float64(cb.Dx() * cb.Dy())
	result.MSE = sqSum / (pixels * 3)
	result.MeanLabDistance = labSum / pixels
	if result.MSE > 0 {
		psnr := 10 * math.Log10(255*255/result.MSE)
		result.PSNR = &psnr
	}
	return result, nil
}

func toColorful(rgb []uint8) colorful.Color {
	return colorful.Color{
		R: float64(rgb[0]) / 255,
		G: float64(rgb[1]) / 255,
		B: float64(rgb[2]) / 255,
	}
}
