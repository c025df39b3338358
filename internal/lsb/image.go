package lsb

import (
	"fmt"
	"image"
)

// CapacityBits returns the number of bits a width x height buffer can carry
// at k bits per channel, header included. Invalid arguments give 0.
func CapacityBits(width, height, k int) int {
	if width <= 0 || height <= 0 || !validBits(k) {
		return 0
	}
	return width * height * usableChannels * k
}

// CapacityBytes returns the largest payload, in bytes, that fits a
// width x height buffer at k bits per channel once the 32-bit header is
// reserved:
//
//	max(0, floor(width*height*3*k/8) - 4)
//
// The result is non-decreasing in width, height and k.
func CapacityBytes(width, height, k int) int {
	return max(0, CapacityBits(width, height, k)/8-HeaderBits/8)
}

// EncodeImage embeds payload into img in place. Capacity is computed from the
// image bounds. Sub-images are supported; only pixels inside the bounds are
// touched.
func EncodeImage(img *image.NRGBA, payload []byte, k int) (Stats, error) {
	if img == nil {
		return Stats{}, fmt.Errorf("%w: no image", ErrPrecondition)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return Stats{}, fmt.Errorf("%w: image has no pixels (%dx%d)", ErrPrecondition, w, h)
	}

	pix, direct := packed(img)
	if len(pix) != w*h*bytesPerPixel {
		return Stats{}, fmt.Errorf("%w: pixel data holds %d bytes, bounds need %d",
			ErrPrecondition, len(pix), w*h*bytesPerPixel)
	}

	stats, err := Encode(pix, payload, k)
	if err != nil {
		return Stats{}, err
	}
	if !direct {
		unpack(img, pix)
	}
	return stats, nil
}

// DecodeImage extracts a payload from img. The header is validated against
// the capacity implied by the image bounds; if Pix is shorter than the bounds
// claim, decoding fails with ErrTruncated once the data runs out.
func DecodeImage(img *image.NRGBA, k int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrPrecondition)
	}
	if !validBits(k) {
		return nil, bitsError(k)
	}
	pix, _ := packed(img)
	return decode(pix, img.Rect.Dx()*img.Rect.Dy(), k)
}

// packed returns the in-bounds pixel bytes of img as one contiguous slice.
// When the rows are already contiguous the slice aliases img.Pix and direct
// is true; otherwise it is a copy.
func packed(img *image.NRGBA) (pix []byte, direct bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, true
	}
	row := w * bytesPerPixel
	if img.Stride == row || h == 1 {
		return img.Pix[:min(len(img.Pix), row*h)], true
	}

	pix = make([]byte, 0, row*h)
	for y := 0; y < h; y++ {
		start := y * img.Stride
		if start >= len(img.Pix) {
			break
		}
		pix = append(pix, img.Pix[start:min(start+row, len(img.Pix))]...)
	}
	return pix, false
}

func unpack(img *image.NRGBA, pix []byte) {
	row := img.Rect.Dx() * bytesPerPixel
	for y := 0; y*row < len(pix); y++ {
		copy(img.Pix[y*img.Stride : y*img.Stride+row], pix[y*row : (y+1)*row])
	}
}
