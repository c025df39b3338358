package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/stego-tools-mcp/internal/lsb"
)

// cachedImage is a decoded image together with the format name reported by
// image.Decode.
type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// Writing a new stego image to a path that is already cached leaves the stale
// decode in place; callers that overwrite files must Evict the path.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/cover.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Use img...
//	cache.Evict("/path/to/cover.png") // Optional: free memory
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, BMP, TIFF and WebP.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the file
//     (e.g., *image.NRGBA for PNG with alpha, *image.YCbCr for JPEG); use
//     ToNRGBA to get a pixel buffer.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate cache entries.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if no registered decoder recognizes the file contents
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

// LoadFormat is Load that also returns the name of the decoder that read the
// file.
//
// Parameters:
//   - path: Path to the image file, cached under the same key as Load.
//
// Returns:
//   - image.Image: The decoded image, shared with Load.
//   - string: The decoder name as reported by image.Decode: "png", "jpeg",
//     "gif", "bmp", "tiff" or "webp". Detection is based on file contents,
//     not the extension.
//   - error: Non-nil if the file cannot be opened or decoded.
func (c *ImageCache) LoadFormat(path string) (image.Image, string, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, "", err
	}
	return entry.img, entry.format, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image: %w", err)
	}

	entry := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Capacity is the payload capacity of an image at one bits-per-channel setting.
type Capacity struct {
	BitsPerChannel int `json:"bits_per_channel"`
	CapacityBytes  int `json:"capacity_bytes"`
	CapacityBits   int `json:"capacity_bits"`
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the file: "png", "jpeg", "gif", "bmp",
	// "tiff" or "webp". Detection is based on file contents.
	Format string `json:"format"`

	// Lossless is false for formats whose encoders discard pixel detail.
	// A payload hidden in such a file has usually been destroyed already.
	Lossless bool `json:"lossless"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Capacities lists the payload capacity for each bits-per-channel value.
	Capacities []Capacity `json:"capacities"`
}

// LoadImageInfo loads an image and returns its metadata along with the
// payload capacity at every supported bits-per-channel setting.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *ImageInfo: Metadata and capacities for the image.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
//
// # Format Detection
//
// Format is the decoder name from LoadFormat, so a PNG saved as ".jpg" is
// still reported as "png" and Lossless.
//
// # Color Depth Detection
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
//
// 16-bit images are reduced to 8 bits per channel before embedding.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch entry.img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := entry.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		Lossless:      IsLossless(entry.format),
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
		Capacities:    Capacities(bounds.Dx(), bounds.Dy()),
	}, nil
}

// Capacities returns the capacity of a width x height image for every
// bits-per-channel value from lsb.MinBitsPerChannel to lsb.MaxBitsPerChannel.
//
// Parameters:
//   - width, height: Image dimensions in pixels.
//
// Returns:
//   - []Capacity: One entry per k in ascending order. Dimensions too small to
//     hold the 32-bit header yield zero CapacityBytes.
func Capacities(width, height int) []Capacity {
	out := make([]Capacity, 0, lsb.MaxBitsPerChannel)
	for k := lsb.MinBitsPerChannel; k <= lsb.MaxBitsPerChannel; k++ {
		out = append(out, Capacity{
			BitsPerChannel: k,
			CapacityBytes:  lsb.CapacityBytes(width, height, k),
			CapacityBits:   lsb.CapacityBits(width, height, k),
		})
	}
	return out
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
//
// This is a lightweight alternative to LoadImageInfo when only the width and
// height are needed. The image is loaded into the cache if not already present.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *DimensionsResult: The image dimensions.
//   - error: Non-nil if the image cannot be loaded.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
