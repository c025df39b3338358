package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
)

// newGradient creates an opaque image with a smooth horizontal gradient.
func newGradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(x * 255 / max(1, width-1))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: 255 - v, B: uint8(y * 10), A: 255})
		}
	}
	return img
}

func TestResize_DoublesDimensions(t *testing.T) {
	src := newGradient(10, 10)

	out, err := Resize(src, 2, "")
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 20x20", out.Bounds().Dx(), out.Bounds().Dy())
	}
	if len(out.Pix) != 1600 {
		t.Errorf("buffer length: got %d, want 1600", len(out.Pix))
	}
	if got := lsb.CapacityBytes(20, 20, 1); got != 146 {
		t.Errorf("capacity: got %d, want 146", got)
	}
}

func TestResize_AllFilters(t *testing.T) {
	src := newGradient(8, 6)

	for _, name := range Filters() {
		t.Run(name, func(t *testing.T) {
			out, err := Resize(src, 2.5, name)
			if err != nil {
				t.Fatalf("Resize failed: %v", err)
			}
			if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 15 {
				t.Errorf("dimensions: got %dx%d, want 20x15", out.Bounds().Dx(), out.Bounds().Dy())
			}
			if out.Bounds().Min != (image.Point{}) {
				t.Errorf("origin: got %v, want (0,0)", out.Bounds().Min)
			}
			if out.Stride != out.Bounds().Dx()*4 {
				t.Errorf("stride: got %d, want %d", out.Stride, out.Bounds().Dx()*4)
			}
		})
	}
}

func TestResize_UniformStaysUniform(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	c := color.NRGBA{R: 90, G: 160, B: 30, A: 255}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			src.SetNRGBA(x, y, c)
		}
	}

	out, err := Resize(src, 3, "lanczos")
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	for y := 0; y < 18; y++ {
		for x := 0; x < 18; x++ {
			got := out.NRGBAAt(x, y)
			if absDiff(got.R, c.R) > 1 || absDiff(got.G, c.G) > 1 || absDiff(got.B, c.B) > 1 {
				t.Fatalf("pixel (%d,%d): got %v, want about %v", x, y, got, c)
			}
		}
	}
}

func TestResize_ScaleOneCopies(t *testing.T) {
	src := newGradient(5, 5)
	out, err := Resize(src, 1, "")
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("byte %d: got %d, want %d", i, out.Pix[i], src.Pix[i])
		}
	}

	out.Pix[0] ^= 0xFF
	if out.Pix[0] == src.Pix[0] {
		t.Error("Resize at scale 1 should return a copy, not the source")
	}
}

func TestResize_Errors(t *testing.T) {
	src := newGradient(4, 4)

	tests := []struct {
		name   string
		src    image.Image
		scale  float64
		filter string
	}{
		{"nil source", nil, 2, ""},
		{"zero dimensions", image.NewNRGBA(image.Rect(0, 0, 0, 5)), 2, ""},
		{"scale below one", src, 0.5, ""},
		{"scale zero", src, 0, ""},
		{"scale NaN", src, math.NaN(), ""},
		{"scale infinite", src, math.Inf(1), ""},
		{"unknown filter", src, 2, "sinc-of-doom"},
		{"too many pixels", src, 1e6, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resize(tt.src, tt.scale, tt.filter); err == nil {
				t.Error("Resize should fail")
			}
		})
	}
}

func TestValidFilter(t *testing.T) {
	if !ValidFilter("") {
		t.Error("empty filter should select the default")
	}
	if !ValidFilter(DefaultFilter) {
		t.Errorf("%s should be valid", DefaultFilter)
	}
	if ValidFilter("bogus") {
		t.Error("bogus should be invalid")
	}
}

func TestToNRGBA_FromRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(3, 3, 7, 7))
	src.Set(3, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	out := ToNRGBA(src)
	if out.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Errorf("bounds: got %v, want (0,0)-(4,4)", out.Bounds())
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel: got %v", got)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestResize_HugeScale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 1))

	for _, name := range Filters() {
		for _, scale := range []float64{1e18, 1e9, math.MaxFloat64} {
			t.Run(name, func(t *testing.T) {
				out, err := Resize(src, scale, name)
				if err == nil {
					t.Errorf("scale %g: expected error, got %v", scale, out.Bounds())
				}
			})
		}
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		scale         float64
		wantW, wantH  int
		wantErr       bool
	}{
		{"double", 10, 10, 2, 20, 20, false},
		{"fractional", 8, 6, 2.5, 20, 15, false},
		{"truncates", 3, 3, 1.5, 4, 4, false},
		{"one", 7, 9, 1, 7, 9, false},
		{"at limit", 10_000, 10_000, 1, 10_000, 10_000, false},
		{"one side overflows int", 10, 1, 1e18, 0, 0, true},
		{"area over limit", 10_001, 10_000, 1, 0, 0, true},
		{"below one", 10, 10, 0.99, 0, 0, true},
		{"NaN", 10, 10, math.NaN(), 0, 0, true},
		{"zero width", 0, 10, 2, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ScaledSize(tt.width, tt.height, tt.scale)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %dx%d", w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScaledSize failed: %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
