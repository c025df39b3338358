package imaging

import (
	"image"
	"testing"

	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
)

func TestDistortion_Identical(t *testing.T) {
	img := newNoise(10, 10, 7)
	result, err := Distortion(img, img)
	if err != nil {
		t.Fatalf("Distortion failed: %v", err)
	}
	if result.ChangedBytes != 0 || result.ChangedPixels != 0 {
		t.Errorf("changes: got %d bytes / %d pixels, want 0", result.ChangedBytes, result.ChangedPixels)
	}
	if result.PSNR != nil {
		t.Errorf("PSNR should be omitted for identical images, got %v", *result.PSNR)
	}
}

func TestDistortion_AfterEmbedding(t *testing.T) {
	cover := newNoise(32, 32, 8)
	stego := ToNRGBA(cover)
	if _, err := lsb.EncodeImage(stego, []byte("a modest secret"), 2); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	result, err := Distortion(cover, stego)
	if err != nil {
		t.Fatalf("Distortion failed: %v", err)
	}
	if result.ChangedBytes == 0 {
		t.Error("embedding should change some bytes")
	}
	if result.AlphaChanged != 0 {
		t.Errorf("AlphaChanged: got %d, want 0", result.AlphaChanged)
	}
	if result.MaxChannelDelta > 3 {
		t.Errorf("MaxChannelDelta: got %d, want <= 3 at 2 bits per channel", result.MaxChannelDelta)
	}
	if result.PSNR == nil || *result.PSNR < 40 {
		t.Errorf("PSNR should be high for a 2-bit embedding, got %v", result.PSNR)
	}
	if result.MaxLabDistance <= 0 {
		t.Error("MaxLabDistance should be positive when pixels changed")
	}
}

func TestDistortion_SizeMismatch(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewNRGBA(image.Rect(0, 0, 4, 5))
	if _, err := Distortion(a, b); err == nil {
		t.Error("Distortion should fail for different sizes")
	}
}
