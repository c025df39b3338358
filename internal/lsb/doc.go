// Package lsb hides a byte payload in the low-order bits of an RGBA pixel
// buffer and recovers it.
//
// # Buffer Layout
//
// A pixel buffer is a byte slice of width*height*4 bytes in row-major order.
// Byte i belongs to channel i%4 (0=R, 1=G, 2=B, 3=A), the same layout as the
// Pix field of *image.NRGBA. Alpha bytes are never read or written.
//
// # Frame Layout
//
// The embedded bitstream is a frame:
//
//	[32-bit payload length, big-endian][payload bytes, MSB first]
//
// Each non-alpha byte carries k bits of the frame in its low k bits, where k
// (bits per channel) is between 1 and 4. The upper 8-k bits are preserved.
// k is not recorded in the frame; encoder and decoder must agree on it out of
// band. Decoding with the wrong k normally fails with ErrInvalidHeader.
//
// # Capacity
//
// A buffer of n pixels holds n*3*k bits. The header takes 32 of them, so the
// largest payload is floor(n*3*k/8) - 4 bytes. See CapacityBytes.
//
// # Errors
//
// All failures wrap one of the sentinel errors and can be matched with
// errors.Is:
//   - ErrPrecondition: missing buffer, bad length, or k outside [1,4]
//   - ErrCapacityExceeded: payload larger than the buffer holds (EncodeChecked only)
//   - ErrTooSmall: buffer cannot hold a 32-bit header
//   - ErrInvalidHeader: decoded length is zero or larger than the buffer holds
//   - ErrTruncated: buffer ended before the frame did
//
// # Thread Safety
//
// Functions keep no state between calls. Calls on distinct buffers may run in
// parallel. Encode mutates its buffer in place, so callers must not share a
// buffer across concurrent calls.
package lsb
