package stego

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/stego-tools-mcp/internal/imaging"
	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
	"github.com/ironsheep/stego-tools-mcp/internal/payload"
)

// ErrEmptyPayload is returned when there is nothing to embed.
var ErrEmptyPayload = errors.New("payload is empty")

// EncodeRequest describes one embedding.
type EncodeRequest struct {
	// CoverPath is the image to hide the payload in.
	CoverPath string

	// Message is text embedded with the single-byte legacy encoding.
	// Ignored when Payload is non-nil.
	Message string

	// Payload is raw bytes to embed.
	Payload []byte

	// BitsPerChannel is k, between 1 and 4.
	BitsPerChannel int

	// Scale enlarges the cover before embedding. Zero means 1.
	Scale float64

	// Filter names the resampling filter; empty selects the default.
	Filter string

	// Compress zstd-compresses the payload before embedding.
	Compress bool

	// OutputPath is where the stego image is written. When empty and Inline
	// is false a path is derived from CoverPath and OutputDir.
	OutputPath string

	// OutputDir receives derived output paths. Empty means the cover's
	// directory.
	OutputDir string

	// OutputFormat is png, bmp or tiff. Empty derives it from OutputPath.
	OutputFormat string

	// Inline returns the stego image as base64 PNG. A file is still written
	// when OutputPath is set.
	Inline bool
}

// EncodeResult reports an embedding.
type EncodeResult struct {
	OutputPath  string `json:"output_path,omitempty"`
	Format      string `json:"format,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`

	SourceWidth  int     `json:"source_width"`
	SourceHeight int     `json:"source_height"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Scale        float64 `json:"scale"`
	Filter       string  `json:"filter,omitempty"`

	BitsPerChannel int `json:"bits_per_channel"`
	lsb.Stats

	// MessageLength is the payload length before compression.
	MessageLength int    `json:"message_length"`
	Compressed    bool   `json:"compressed"`
	Digest        string `json:"payload_blake3"`

	Warnings   []string                  `json:"warnings,omitempty"`
	Distortion *imaging.DistortionResult `json:"distortion,omitempty"`
}

// Encode loads the cover, optionally enlarges it, embeds the payload and
// writes the stego image.
//
// # Errors
//
//   - ErrEmptyPayload when the message and payload are both empty
//   - lsb.ErrPrecondition for k outside [1,4]
//   - lsb.ErrCapacityExceeded when the payload does not fit; nothing is written
//   - imaging.ErrLossyFormat when the output format would destroy the payload
//   - load, resize and write failures
func Encode(cache *imaging.ImageCache, req EncodeRequest) (*EncodeResult, error) {
	if req.BitsPerChannel < lsb.MinBitsPerChannel || req.BitsPerChannel > lsb.MaxBitsPerChannel {
		return nil, fmt.Errorf("%w: bits per channel must be between %d and %d, got %d",
			lsb.ErrPrecondition, lsb.MinBitsPerChannel, lsb.MaxBitsPerChannel, req.BitsPerChannel)
	}
	if req.Scale == 0 {
		req.Scale = 1
	}
	if req.Filter == "" {
		req.Filter = imaging.DefaultFilter
	}

	var warnings []string
	data := req.Payload
	if data == nil {
		if payload.Lossy(req.Message) {
			warnings = append(warnings, "message contains characters above U+00FF; they are stored truncated to 8 bits")
		}
		data = payload.FromText(req.Message)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	messageLength := len(data)
	digest := payload.Digest(data)
	if req.Compress {
		data = payload.Compress(data)
	}

	outputPath, format, err := resolveOutput(req)
	if err != nil {
		return nil, err
	}

	cover, err := cache.Load(req.CoverPath)
	if err != nil {
		return nil, err
	}
	buf, err := imaging.Resize(cover, req.Scale, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare cover: %w", err)
	}
	before := imaging.ToNRGBA(buf)

	stats, err := lsb.EncodeChecked(buf.Pix, data, req.BitsPerChannel)
	if err != nil {
		if errors.Is(err, lsb.ErrCapacityExceeded) {
			return nil, fmt.Errorf("%w (%dx%d cover); raise bits per channel or scale", err, buf.Rect.Dx(), buf.Rect.Dy())
		}
		return nil, err
	}

	result := &EncodeResult{
		SourceWidth:    cover.Bounds().Dx(),
		SourceHeight:   cover.Bounds().Dy(),
		Width:          buf.Rect.Dx(),
		Height:         buf.Rect.Dy(),
		Scale:          req.Scale,
		BitsPerChannel: req.BitsPerChannel,
		Stats:          stats,
		MessageLength:  messageLength,
		Compressed:     req.Compress,
		Digest:         digest,
		Warnings:       warnings,
	}
	if req.Scale != 1 {
		result.Filter = req.Filter
	}

	if outputPath != "" {
		if err := imaging.WriteImage(outputPath, buf, format); err != nil {
			return nil, err
		}
		cache.Evict(outputPath)
		result.OutputPath = outputPath
		result.Format = format
	}
	if req.Inline {
		encoded, err := imaging.EncodeBase64PNG(buf)
		if err != nil {
			return nil, err
		}
		result.ImageBase64 = encoded
		result.MimeType = "image/png"
	}

	if d, err := imaging.Distortion(before, buf); err == nil {
		result.Distortion = d
	}
	return result, nil
}

// resolveOutput picks the output path and format for req. The path is empty
// only for inline-only requests.
func resolveOutput(req EncodeRequest) (path, format string, err error) {
	path = req.OutputPath
	if path == "" && !req.Inline {
		path = DefaultOutputPath(req.CoverPath, req.OutputDir, req.OutputFormat)
	}
	if path == "" {
		return "", "", nil
	}

	format = req.OutputFormat
	if format == "" {
		format = imaging.FormatFromPath(path)
	}
	if !imaging.IsLossless(format) {
		return "", "", fmt.Errorf("%w: %s (use png, bmp or tiff)", imaging.ErrLossyFormat, format)
	}
	return path, imaging.NormalizeFormat(format), nil
}

// DefaultOutputPath names the stego image for a cover: the cover's base name
// with a ".stego" suffix, in dir (or the cover's directory when dir is empty).
func DefaultOutputPath(coverPath, dir, format string) string {
	base := strings.TrimSuffix(filepath.Base(coverPath), filepath.Ext(coverPath))
	if dir == "" {
		dir = filepath.Dir(coverPath)
	}
	return filepath.Join(dir, base+".stego."+imaging.NormalizeFormat(format))
}

// PayloadFromBase64 decodes a base64 payload argument.
func PayloadFromBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid payload_base64: %w", err)
	}
	return b, nil
}
