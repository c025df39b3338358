package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrLossyFormat is returned when asked to write a stego image in a format
// that does not preserve every pixel value exactly.
var ErrLossyFormat = errors.New("lossy output format destroys embedded data")

// DefaultFormat is the output format used when none is named.
const DefaultFormat = "png"

// lossless lists the formats whose encoders round-trip 8-bit NRGBA exactly.
var lossless = map[string]bool{
	"png":  true,
	"bmp":  true,
	"tiff": true,
}

// IsLossless reports whether format preserves pixel values exactly.
func IsLossless(format string) bool {
	return lossless[NormalizeFormat(format)]
}

// FormatFromPath derives an output format from a file extension, falling
// back to DefaultFormat when the extension is missing.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return DefaultFormat
	}
	return NormalizeFormat(ext)
}

// NormalizeFormat lower-cases a format name and maps aliases (jpg, tif)
// to the names image.Decode reports. Empty selects DefaultFormat.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(format); f {
	case "":
		return DefaultFormat
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	default:
		return f
	}
}

// EncodeLossless writes img to w in the given lossless format.
//
// # Errors
//
//   - ErrLossyFormat for jpeg, webp, gif and other formats that would alter
//     pixel values (gif quantizes to a 256-color palette)
//   - encoder errors from the underlying format package
func EncodeLossless(w io.Writer, img image.Image, format string) error {
	format = NormalizeFormat(format)
	if !lossless[format] {
		return fmt.Errorf("%w: %s (use png, bmp or tiff)", ErrLossyFormat, format)
	}

	var err error
	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case "bmp":
		err = bmp.Encode(w, img)
	case "tiff":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// WriteImage writes img to path in the given lossless format. An empty
// format is derived from the path extension.
func WriteImage(path string, img image.Image, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	// Validate before creating the file so a lossy request leaves nothing behind.
	if !IsLossless(format) {
		return fmt.Errorf("%w: %s (use png, bmp or tiff)", ErrLossyFormat, NormalizeFormat(format))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := EncodeLossless(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// EncodeBase64PNG returns img as a base64-encoded PNG.
func EncodeBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ResizeResult contains a resampled image.
type ResizeResult struct {
	SourceWidth  int     `json:"source_width"`
	SourceHeight int     `json:"source_height"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Scale        float64 `json:"scale"`
	Filter       string  `json:"filter"`
	OutputPath   string  `json:"output_path,omitempty"`
	ImageBase64  string  `json:"image_base64,omitempty"`
	MimeType     string  `json:"mime_type,omitempty"`

	// Capacities lists the payload capacity of the resampled image.
	Capacities []Capacity `json:"capacities"`
}

// ResizeImage resamples img and either writes it to outputPath or, when
// outputPath is empty, returns it inline as base64 PNG.
func ResizeImage(img image.Image, scale float64, filter, outputPath string) (*ResizeResult, error) {
	if filter == "" {
		filter = DefaultFilter
	}
	resized, err := Resize(img, scale, filter)
	if err != nil {
		return nil, err
	}

	b := resized.Bounds()
	result := &ResizeResult{
		SourceWidth:  img.Bounds().Dx(),
		SourceHeight: img.Bounds().Dy(),
		Width:        b.Dx(),
		Height:       b.Dy(),
		Scale:        scale,
		Filter:       filter,
		Capacities:   Capacities(b.Dx(), b.Dy()),
	}

	if outputPath != "" {
		if err := WriteImage(outputPath, resized, ""); err != nil {
			return nil, err
		}
		result.OutputPath = outputPath
		return result, nil
	}

	encoded, err := EncodeBase64PNG(resized)
	if err != nil {
		return nil, err
	}
	result.ImageBase64 = encoded
	result.MimeType = "image/png"
	return result, nil
}
