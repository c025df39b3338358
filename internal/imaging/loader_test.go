package imaging

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage creates a simple test image file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	// First load
	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1 == nil {
		t.Fatal("Load returned nil image")
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	// Create a file with invalid image data
	tmpFile, err := os.CreateTemp("", "invalid-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.WriteString("not an image")
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = cache.Load(tmpFile.Name())
	if err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})
	defer os.Remove(imgPath)

	// Load image
	_, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Clear cache
	cache.Clear()

	// Verify cache is empty by checking internal state
	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	// Load image
	_, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Evict
	cache.Evict(imgPath)

	// Verify image is evicted
	cache.mu.RLock()
	_, exists := cache.images[imgPath]
	cache.mu.RUnlock()

	if exists {
		t.Error("Evict did not remove image from cache")
	}
}

func TestImageCache_Evict_NonExistent(t *testing.T) {
	cache := NewImageCache()
	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errors := make(chan error, 100)

	// Concurrent loads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Load(imgPath)
			if err != nil {
				errors <- err
			}
		}()
	}

	wg.Wait()
	close(errors)

	for err := range errors {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 {
		t.Errorf("Width: got %d, want 200", info.Width)
	}
	if info.Height != 150 {
		t.Errorf("Height: got %d, want 150", info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	cache := NewImageCache()
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))

	tests := []struct {
		ext      string
		encode   string
		format   string
		lossless bool
	}{
		{".png", "png", "png", true},
		{".bmp", "bmp", "bmp", true},
		{".tiff", "tiff", "tiff", true},
		// Detection reads file contents, not the extension.
		{".jpg", "png", "png", true},
		{".xyz", "bmp", "bmp", true},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			tmpPath := filepath.Join(t.TempDir(), "test-format"+tt.ext)
			f, err := os.Create(tmpPath)
			if err != nil {
				t.Fatalf("failed to create file: %v", err)
			}
			if err := EncodeLossless(f, src, tt.encode); err != nil {
				t.Fatalf("EncodeLossless failed: %v", err)
			}
			f.Close()

			info, err := LoadImageInfo(cache, tmpPath)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
			if info.Lossless != tt.lossless {
				t.Errorf("Lossless for %s: got %v, want %v", tt.ext, info.Lossless, tt.lossless)
			}
		})
	}
}

func TestLoadImageInfo_JPEGIsLossy(t *testing.T) {
	cache := NewImageCache()
	tmpPath := filepath.Join(t.TempDir(), "cover.jpg")
	f, err := os.Create(tmpPath)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil)
	f.Close()

	info, err := LoadImageInfo(cache, tmpPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("Format: got %s, want jpeg", info.Format)
	}
	if info.Lossless {
		t.Error("jpeg should not be reported as lossless")
	}
}

func TestLoadImageInfo_Capacities(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 20, 20, color.RGBA{1, 2, 3, 255})
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if len(info.Capacities) != 4 {
		t.Fatalf("Capacities: got %d entries, want 4", len(info.Capacities))
	}

	want := []int{146, 296, 446, 596}
	for i, c := range info.Capacities {
		if c.BitsPerChannel != i+1 {
			t.Errorf("entry %d: BitsPerChannel got %d, want %d", i, c.BitsPerChannel, i+1)
		}
		if c.CapacityBytes != want[i] {
			t.Errorf("k=%d: CapacityBytes got %d, want %d", c.BitsPerChannel, c.CapacityBytes, want[i])
		}
		if c.CapacityBits != 20*20*3*(i+1) {
			t.Errorf("k=%d: CapacityBits got %d, want %d", c.BitsPerChannel, c.CapacityBits, 20*20*3*(i+1))
		}
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := LoadImageInfo(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 300, 200, color.RGBA{100, 100, 100, 255})
	defer os.Remove(imgPath)

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}

	if dims.Width != 300 {
		t.Errorf("Width: got %d, want 300", dims.Width)
	}
	if dims.Height != 200 {
		t.Errorf("Height: got %d, want 200", dims.Height)
	}
}

func TestGetDimensions_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := GetDimensions(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("GetDimensions should fail for non-existent file")
	}
}

func TestImageCache_LoadFormat(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 10, 10, color.RGBA{9, 9, 9, 255})
	defer os.Remove(imgPath)

	img, format, err := cache.LoadFormat(imgPath)
	if err != nil {
		t.Fatalf("LoadFormat failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format: got %s, want png", format)
	}

	// The cached entry keeps its format.
	img2, format2, err := cache.LoadFormat(imgPath)
	if err != nil {
		t.Fatalf("second LoadFormat failed: %v", err)
	}
	if img2 != img || format2 != "png" {
		t.Error("second LoadFormat did not return the cached entry")
	}
}

func TestLoadImageInfo_FormatFromContents(t *testing.T) {
	src := createTestImage(t, 4, 4, color.RGBA{1, 2, 3, 255})
	defer os.Remove(src)

	// PNG bytes behind a lossy extension.
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("failed to read test image: %v", err)
	}
	misnamed := filepath.Join(t.TempDir(), "cover.jpg")
	if err := os.WriteFile(misnamed, data, 0o644); err != nil {
		t.Fatalf("failed to write misnamed image: %v", err)
	}

	info, err := LoadImageInfo(NewImageCache(), misnamed)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Format != "png" || !info.Lossless {
		t.Errorf("got format %q lossless %v, want png and true", info.Format, info.Lossless)
	}
}

func TestCapacities_TooSmallForHeader(t *testing.T) {
	// 2x2 pixels hold 12 bits at k=1, 48 bits at k=4.
	got := Capacities(2, 2)
	want := []int{0, 0, 0, 2}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.CapacityBytes != want[i] {
			t.Errorf("k=%d: CapacityBytes got %d, want %d", c.BitsPerChannel, c.CapacityBytes, want[i])
		}
	}
}
