package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// DefaultFilter is the resampling filter used when none is named.
const DefaultFilter = "lanczos"

// MaxPixels bounds the size of a resampled image. A cover this large already
// holds hundreds of megabytes at one bit per channel.
const MaxPixels = 100_000_000

type resizeFunc func(src image.Image, width, height int) *image.NRGBA

// filters maps filter names to resampling implementations. Pixel-exact output
// is not required of any of them; they only need to produce a smooth,
// high-quality enlargement.
var filters = map[string]resizeFunc{
	"lanczos": func(src image.Image, w, h int) *image.NRGBA {
		return imaging.Resize(src, w, h, imaging.Lanczos)
	},
	"catmullrom": func(src image.Image, w, h int) *image.NRGBA {
		return imaging.Resize(src, w, h, imaging.CatmullRom)
	},
	"mitchell": func(src image.Image, w, h int) *image.NRGBA {
		return imaging.Resize(src, w, h, imaging.MitchellNetravali)
	},
	"xdraw-catmullrom": func(src image.Image, w, h int) *image.NRGBA {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		return dst
	},
	"bild-lanczos": func(src image.Image, w, h int) *image.NRGBA {
		return imaging.Clone(transform.Resize(src, w, h, transform.Lanczos))
	},
	"bild-gaussian": func(src image.Image, w, h int) *image.NRGBA {
		return imaging.Clone(transform.Resize(src, w, h, transform.Gaussian))
	},
}

// Filters returns the names of the available resampling filters, sorted.
func Filters() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidFilter reports whether name is a known filter. The empty string
// selects DefaultFilter and is valid.
func ValidFilter(name string) bool {
	if name == "" {
		return true
	}
	_, ok := filters[name]
	return ok
}

// Resize enlarges src by scale using the named filter and returns a newly
// allocated pixel buffer of int(width*scale) x int(height*scale).
//
// A scale of exactly 1 copies src without resampling.
//
// # Errors
//
//   - src is nil or has zero width or height
//   - filter is not one of Filters()
//   - scale or the output size is rejected by ScaledSize
func Resize(src image.Image, scale float64, filter string) (*image.NRGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("no source image")
	}
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("source image has zero dimensions (%dx%d)", bounds.Dx(), bounds.Dy())
	}
	if filter == "" {
		filter = DefaultFilter
	}
	resize, ok := filters[filter]
	if !ok {
		return nil, fmt.Errorf("unknown filter: %s", filter)
	}

	w, h, err := ScaledSize(bounds.Dx(), bounds.Dy(), scale)
	if err != nil {
		return nil, err
	}
	if scale == 1 {
		return ToNRGBA(src), nil
	}
	return resize(src, w, h), nil
}

// ScaledSize returns the dimensions Resize produces for a width x height
// source at the given scale: (int(width*scale), int(height*scale)).
//
// The size is checked in floating point before conversion, so a huge scale
// is reported as an error instead of overflowing int.
//
// # Errors
//
//   - width or height is not positive
//   - scale is below 1, NaN or infinite
//   - the output would exceed MaxPixels
func ScaledSize(width, height int, scale float64) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("source image has zero dimensions (%dx%d)", width, height)
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 1 {
		return 0, 0, fmt.Errorf("scale must be a finite number >= 1, got %v", scale)
	}
	fw, fh := float64(width)*scale, float64(height)*scale
	if fw > MaxPixels || fh > MaxPixels || fw*fh > MaxPixels {
		return 0, 0, fmt.Errorf("scaled image %.0fx%.0f exceeds %d pixels", fw, fh, MaxPixels)
	}
	return int(fw), int(fh), nil
}

// ToNRGBA copies img into a new tightly packed *image.NRGBA with its origin
// at (0,0). The copy is the cover buffer handed to package lsb, so cached
// source images are never modified by encoding.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
