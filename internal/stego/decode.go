package stego

import (
	"encoding/base64"
	"fmt"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
	"github.com/ironsheep/stego-tools-mcp/internal/payload"
)

// DecodeRequest describes one extraction.
type DecodeRequest struct {
	// Path is the stego image.
	Path string

	// BitsPerChannel must match the value used to encode.
	BitsPerChannel int

	// Compressed zstd-decompresses the extracted bytes.
	Compressed bool
}

// DecodeResult carries a recovered payload.
type DecodeResult struct {
	// Message is the payload read with the single-byte legacy text encoding.
	Message string `json:"message"`

	// PayloadBase64 is the exact payload bytes.
	PayloadBase64 string `json:"payload_base64"`

	PayloadLength  int `json:"payload_length"`
	EmbeddedLength int `json:"embedded_length"`

	BitsPerChannel int    `json:"bits_per_channel"`
	Compressed     bool   `json:"compressed"`
	Digest         string `json:"payload_blake3"`

	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Format   string   `json:"format"`
	Warnings []string `json:"warnings,omitempty"`
}

// Decode extracts the payload hidden in the image at req.Path.
//
// The image is decoded and normalised to 8-bit NRGBA first, so any lossless
// format the loader understands can be read.
//
// # Errors
//
//   - lsb.ErrPrecondition for k outside [1,4]
//   - lsb.ErrTooSmall, lsb.ErrInvalidHeader, lsb.ErrTruncated from the codec;
//     ErrInvalidHeader is the usual result of a wrong k or a lossy re-save
//   - a decompression error when Compressed is set but the payload is not zstd
func Decode(cache *imaging.ImageCache, req DecodeRequest) (*DecodeResult, error) {
	if req.BitsPerChannel < lsb.MinBitsPerChannel || req.BitsPerChannel > lsb.MaxBitsPerChannel {
		return nil, fmt.Errorf("%w: bits per channel must be between %d and %d, got %d",
			lsb.ErrPrecondition, lsb.MinBitsPerChannel, lsb.MaxBitsPerChannel, req.BitsPerChannel)
	}

	img, format, err := cache.LoadFormat(req.Path)
	if err != nil {
		return nil, err
	}

	var warnings []string
	if !imaging.IsLossless(format) {
		warnings = append(warnings, fmt.Sprintf("%s is a lossy format; an embedded payload is unlikely to survive", format))
	}

	buf := imaging.ToNRGBA(img)
	data, err := lsb.DecodeImage(buf, req.BitsPerChannel)
	if err != nil {
		if len(warnings) > 0 {
			return nil, fmt.Errorf("%w (%s)", err, warnings[0])
		}
		return nil, err
	}
	embedded := len(data)

	if req.Compressed {
		data, err = payload.Decompress(data)
		if err != nil {
			return nil, err
		}
	}

	return &DecodeResult{
		Message:        payload.ToText(data),
		PayloadBase64:  base64.StdEncoding.EncodeToString(data),
		PayloadLength:  len(data),
		EmbeddedLength: embedded,
		BitsPerChannel: req.BitsPerChannel,
		Compressed:     req.Compressed,
		Digest:         payload.Digest(data),
		Width:          buf.Rect.Dx(),
		Height:         buf.Rect.Dy(),
		Format:         format,
		Warnings:       warnings,
	}, nil
}
