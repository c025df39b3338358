package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestInspectPixel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 0, color.NRGBA{R: 0xAB, G: 0x01, B: 0xFE, A: 0x80})

	result, err := InspectPixel(img, 1, 0, 2)
	if err != nil {
		t.Fatalf("InspectPixel failed: %v", err)
	}
	if result.Hex != "#AB01FE" {
		t.Errorf("Hex: got %s, want #AB01FE", result.Hex)
	}
	if len(result.Channels) != 4 {
		t.Fatalf("Channels: got %d, want 4", len(result.Channels))
	}

	want := []ChannelBits{
		{Channel: "r", Value: 0xAB, Binary: "10101011", LowBits: "11", FrameBit: 6},
		{Channel: "g", Value: 0x01, Binary: "00000001", LowBits: "01", FrameBit: 8},
		{Channel: "b", Value: 0xFE, Binary: "11111110", LowBits: "10", FrameBit: 10},
		{Channel: "a", Value: 0x80, Binary: "10000000", FrameBit: -1},
	}
	for i, w := range want {
		if result.Channels[i] != w {
			t.Errorf("channel %d: got %+v, want %+v", i, result.Channels[i], w)
		}
	}
}

func TestInspectPixel_Errors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	tests := []struct {
		name string
		x, y int
		k    int
	}{
		{"x negative", -1, 0, 1},
		{"y too large", 0, 4, 1},
		{"k zero", 0, 0, 0},
		{"k five", 0, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InspectPixel(img, tt.x, tt.y, tt.k); err == nil {
				t.Error("InspectPixel should fail")
			}
		})
	}
}

func TestInspectPixel_MatchesCodecConversion(t *testing.T) {
	// Premultiplied translucent source with an offset origin.
	src := image.NewRGBA(image.Rect(5, 7, 9, 10))
	src.SetRGBA(6, 8, color.RGBA{R: 100, G: 51, B: 3, A: 128})
	src.SetRGBA(8, 9, color.RGBA{R: 1, G: 2, B: 3, A: 7})
	src.SetRGBA(5, 7, color.RGBA{R: 0, G: 0, B: 0, A: 0})

	codec := ToNRGBA(src)
	for _, pt := range []image.Point{{1, 1}, {3, 2}, {0, 0}} {
		result, err := InspectPixel(src, pt.X, pt.Y, 4)
		if err != nil {
			t.Fatalf("InspectPixel(%d,%d) failed: %v", pt.X, pt.Y, err)
		}
		want := codec.NRGBAAt(pt.X, pt.Y)
		got := []uint8{result.Channels[0].Value, result.Channels[1].Value, result.Channels[2].Value, result.Channels[3].Value}
		if got[0] != want.R || got[1] != want.G || got[2] != want.B || got[3] != want.A {
			t.Errorf("(%d,%d): got %v, want %+v", pt.X, pt.Y, got, want)
		}
	}
}
