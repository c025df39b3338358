// Package imaging loads, resamples, writes and inspects the images that
// carry hidden payloads.
//
// It covers everything around the codec that deals with image files:
// decoding covers of any supported format into the 8-bit NRGBA buffer the
// codec embeds into, enlarging covers to raise their capacity, writing stego
// images in formats that preserve every bit, and measuring how far an
// embedding moved the pixels.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based from the top-left of the
// image bounds:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Lossless Output
//
// Only PNG, BMP and TIFF are written. JPEG and WebP output is refused with
// ErrLossyFormat: re-quantisation rewrites the low bits a payload lives in.
// Lossy files can still be read, so covers may be JPEGs.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Resize, ToNRGBA and the
// other operations never modify their inputs and can be called concurrently.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
