package lsb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// HeaderBits is the width of the length prefix at the start of every frame.
	HeaderBits = 32

	// MinBitsPerChannel and MaxBitsPerChannel bound k.
	MinBitsPerChannel = 1
	MaxBitsPerChannel = 4

	bytesPerPixel  = 4
	usableChannels = 3
)

var (
	// ErrPrecondition is returned when k is outside [1,4], or when Encode gets
	// an empty buffer or one whose length is not a multiple of 4.
	ErrPrecondition = errors.New("precondition failed")

	// ErrCapacityExceeded is returned by EncodeChecked when the payload is
	// larger than the buffer holds at k, and by Encode when the payload length
	// does not fit the 32-bit header.
	ErrCapacityExceeded = errors.New("payload exceeds capacity")

	// ErrTooSmall is returned by Decode, DecodeImage and HeaderLength when the
	// buffer has fewer than 32 usable bits at k, so no header can be read.
	ErrTooSmall = errors.New("buffer too small for header")

	// ErrInvalidHeader is returned by Decode and DecodeImage when the header is
	// zero or claims more bytes than the buffer could carry. A k that differs
	// from the one used to encode usually produces it.
	ErrInvalidHeader = errors.New("invalid frame header")

	// ErrTruncated is returned by DecodeImage when the image's Pix slice ends
	// before the header or the payload it announces has been read.
	ErrTruncated = errors.New("frame truncated")
)

// Stats describes an encode call.
type Stats struct {
	// BufferLength is the length of the pixel buffer in bytes.
	BufferLength int `json:"buffer_length"`

	// CapacityBytes is the largest payload the buffer holds at this k.
	CapacityBytes int `json:"capacity_bytes"`

	// PayloadLength is the payload length in bytes (the header value).
	PayloadLength int `json:"payload_length"`
}

// Encode writes a frame carrying payload into the low k bits of every
// non-alpha byte of pix, starting at index 0.
//
// pix is modified in place. Bytes past the end of the frame are left as they
// were. Encode does not check capacity: if the frame is longer than the
// buffer holds, only the part that fits is written and the result will not
// decode. Use EncodeChecked or compare against CapacityBytes first.
//
// Returns ErrPrecondition if pix is empty, its length is not a multiple of 4,
// or k is outside [1,4].
func Encode(pix []byte, payload []byte, k int) (Stats, error) {
	if err := checkBuffer(pix, k); err != nil {
		return Stats{}, err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return Stats{}, fmt.Errorf("%w: payload of %d bytes does not fit a 32-bit header", ErrCapacityExceeded, len(payload))
	}

	writeFrame(pix, frame(payload), k)

	return Stats{
		BufferLength:  len(pix),
		CapacityBytes: CapacityBytes(len(pix)/bytesPerPixel, 1, k),
		PayloadLength: len(payload),
	}, nil
}

// EncodeChecked is Encode with a capacity guard. When payload is larger than
// the buffer can hold it returns ErrCapacityExceeded and leaves pix untouched.
func EncodeChecked(pix []byte, payload []byte, k int) (Stats, error) {
	if err := checkBuffer(pix, k); err != nil {
		return Stats{}, err
	}
	capacity := CapacityBytes(len(pix)/bytesPerPixel, 1, k)
	if len(payload) > capacity {
		return Stats{}, fmt.Errorf("%w: payload is %d bytes, buffer holds %d at %d bits per channel",
			ErrCapacityExceeded, len(payload), capacity, k)
	}
	return Encode(pix, payload, k)
}

// Decode extracts the payload from a buffer written by Encode with the same k.
func Decode(pix []byte, k int) ([]byte, error) {
	if !validBits(k) {
		return nil, bitsError(k)
	}
	return decode(pix, len(pix)/bytesPerPixel, k)
}

// HeaderLength reads only the 32-bit length header from pix. The value is
// not validated against the buffer size.
func HeaderLength(pix []byte, k int) (uint32, error) {
	if !validBits(k) {
		return 0, bitsError(k)
	}
	pixels := len(pix) / bytesPerPixel
	if total := CapacityBits(pixels, 1, k); total < HeaderBits {
		return 0, tooSmall(total)
	}
	r := bitReader{pix: pix[:pixels*bytesPerPixel], k: k}
	header, ok := r.read(HeaderBits)
	if !ok {
		return 0, fmt.Errorf("%w: buffer ended inside the length header", ErrTruncated)
	}
	return uint32(header), nil
}

// decode runs the two-phase extraction. pixels is the caller-visible pixel
// count and sets the capacity limits; the walk itself stops at the end of pix,
// which may be shorter when the buffer was cut after encoding.
func decode(pix []byte, pixels, k int) ([]byte, error) {
	totalBits := CapacityBits(pixels, 1, k)
	if totalBits < HeaderBits {
		return nil, tooSmall(totalBits)
	}
	if limit := pixels * bytesPerPixel; len(pix) > limit {
		pix = pix[:limit]
	}

	r := bitReader{pix: pix, k: k}
	header, ok := r.read(HeaderBits)
	if !ok {
		return nil, fmt.Errorf("%w: buffer ended inside the length header", ErrTruncated)
	}

	maxBytes := uint64((totalBits - HeaderBits) / 8)
	if header == 0 || header > maxBytes {
		return nil, fmt.Errorf("%w: header claims %d bytes, buffer holds at most %d (wrong bits per channel or altered image)",
			ErrInvalidHeader, header, maxBytes)
	}

	out := make([]byte, header)
	for i := range out {
		b, ok := r.read(8)
		if !ok {
			return nil, fmt.Errorf("%w: need %d bits, buffer exhausted after %d",
				ErrTruncated, HeaderBits+header*8, HeaderBits+uint64(i)*8)
		}
		out[i] = byte(b)
	}
	return out, nil
}

// frame prepends the big-endian length header to payload.
func frame(payload []byte) []byte {
	f := make([]byte, HeaderBits/8+len(payload))
	binary.BigEndian.PutUint32(f, uint32(len(payload)))
	copy(f[HeaderBits/8:], payload)
	return f
}

// writeFrame spreads the bits of f over the non-alpha bytes of pix, k at a
// time. The final chunk is padded on the right with zero bits.
func writeFrame(pix []byte, f []byte, k int) {
	total := len(f) * 8
	keep := ^mask(k)
	bit := 0
	for i := range pix {
		if bit >= total {
			return
		}
		if isAlpha(i) {
			continue
		}
		var v byte
		for j := 0; j < k; j++ {
			v <<= 1
			if bit < total {
				v |= f[bit>>3] >> (7 - bit&7) & 1
			}
			bit++
		}
		pix[i] = pix[i]&keep | v
	}
}

// bitReader walks the non-alpha bytes of a buffer and hands out their low
// k bits as a continuous MSB-first stream.
type bitReader struct {
	pix []byte
	k   int
	i   int    // next byte index
	acc uint64 // pending bits, oldest highest
	n   int    // number of pending bits
}

// read returns the next want bits (want <= 32) as an integer. It reports
// false when the buffer is exhausted first.
func (r *bitReader) read(want int) (uint64, bool) {
	for r.n < want {
		if !r.pull() {
			return 0, false
		}
	}
	shift := r.n - want
	v := r.acc >> shift & (uint64(1)<<want - 1)
	r.acc &= uint64(1)<<shift - 1
	r.n = shift
	return v, true
}

func (r *bitReader) pull() bool {
	for r.i < len(r.pix) {
		i := r.i
		r.i++
		if isAlpha(i) {
			continue
		}
		r.acc = r.acc<<r.k | uint64(r.pix[i]&mask(r.k))
		r.n += r.k
		return true
	}
	return false
}

func isAlpha(i int) bool {
	return (i+1)%bytesPerPixel == 0
}

func mask(k int) byte {
	return byte(1)<<k - 1
}

func validBits(k int) bool {
	return k >= MinBitsPerChannel && k <= MaxBitsPerChannel
}

func checkBuffer(pix []byte, k int) error {
	if !validBits(k) {
		return bitsError(k)
	}
	if len(pix) == 0 {
		return fmt.Errorf("%w: no pixel data", ErrPrecondition)
	}
	if len(pix)%bytesPerPixel != 0 {
		return fmt.Errorf("%w: buffer length %d is not a multiple of %d", ErrPrecondition, len(pix), bytesPerPixel)
	}
	return nil
}

func bitsError(k int) error {
	return fmt.Errorf("%w: bits per channel must be between %d and %d, got %d",
		ErrPrecondition, MinBitsPerChannel, MaxBitsPerChannel, k)
}

func tooSmall(totalBits int) error {
	return fmt.Errorf("%w: %d bits available, header needs %d", ErrTooSmall, totalBits, HeaderBits)
}
