package imaging

import (
	"fmt"
	"image"

	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
)

// ChannelBits describes one color channel of a pixel.
type ChannelBits struct {
	Channel string `json:"channel"` // "r", "g", "b" or "a"
	Value   uint8  `json:"value"`   // Channel byte (0-255)
	Binary  string `json:"binary"`  // Channel byte as 8 binary digits

	// LowBits holds the k low-order bits that carry payload, as binary digits.
	// Empty for alpha, which never carries payload.
	LowBits string `json:"low_bits,omitempty"`

	// FrameBit is the offset in the embedded frame of the first bit this
	// channel carries; -1 for alpha.
	FrameBit int `json:"frame_bit"`
}

// PixelBits contains the per-channel bit breakdown of one pixel.
type PixelBits struct {
	X              int           `json:"x"`
	Y              int           `json:"y"`
	Hex            string        `json:"hex"` // "#RRGGBB", alpha excluded
	BitsPerChannel int           `json:"bits_per_channel"`
	Channels       []ChannelBits `json:"channels"`
}

// InspectPixel reports the channel bytes of the pixel at (x, y) and the low
// bits that an embedded frame would occupy at k bits per channel.
//
// Coordinates are 0-based from the top-left of the image bounds. The pixel
// is read through ToNRGBA, the same conversion Encode and Decode use, so the
// reported low bits are the ones the codec sees.
func InspectPixel(img image.Image, x, y, k int) (*PixelBits, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	if k < lsb.MinBitsPerChannel || k > lsb.MaxBitsPerChannel {
		return nil, fmt.Errorf("bits per channel must be between %d and %d, got %d",
			lsb.MinBitsPerChannel, lsb.MaxBitsPerChannel, k)
	}

	c := ToNRGBA(img).NRGBAAt(x, y)
	pixelIndex := y*bounds.Dx() + x
	firstBit := pixelIndex * 3 * k

	values := []uint8{c.R, c.G, c.B, c.A}
	names := []string{"r", "g", "b", "a"}
	channels := make([]ChannelBits, 0, len(values))
	for i, v := range values {
		ch := ChannelBits{
			Channel:  names[i],
			Value:    v,
			Binary:   fmt.Sprintf("%08b", v),
			FrameBit: -1,
		}
		if i < 3 {
			ch.LowBits = fmt.Sprintf("%0*b", k, v&(1<<k-1))
			ch.FrameBit = firstBit + i*k
		}
		channels = append(channels, ch)
	}

	return &PixelBits{
		X:              x,
		Y:              y,
		Hex:            fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		BitsPerChannel: k,
		Channels:       channels,
	}, nil
}
