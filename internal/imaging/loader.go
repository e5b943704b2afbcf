package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrDecode is wrapped by every error caused by an image that could not be
// fetched or decoded.
var ErrDecode = errors.New("image decode failed")

// maxDownloadBytes bounds the size of an image fetched from a URL.
const maxDownloadBytes = 32 << 20

// httpClient is used for URL sources. Tests may swap it.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// SourceCache provides thread-safe caching of decoded source images so that a
// long-running server does not refetch a screenshot for every tool call.
//
// The cache only holds decoded inputs. Nothing derived from an image (crops,
// masks, extracted points) is ever cached; every digitization re-derives its
// results from the source pixels. File entries remember the file's size and
// modification time and are reloaded when either changes.
//
// # Example Usage
//
//	cache := imaging.NewSourceCache()
//	img, err := cache.Load(ctx, "/path/to/screenshot.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/screenshot.png") // Optional: free memory
type SourceCache struct {
	mu     sync.RWMutex
	images map[string]cacheEntry
}

// cacheEntry is a decoded image and the file stamp it was decoded from. URL
// entries have a zero stamp.
type cacheEntry struct {
	img     image.Image
	modTime time.Time
	size    int64
}

func (e cacheEntry) matches(info os.FileInfo) bool {
	if info == nil {
		return true
	}
	return e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// NewSourceCache creates an empty cache ready for concurrent use.
func NewSourceCache() *SourceCache {
	return &SourceCache{
		images: make(map[string]cacheEntry),
	}
}

// Load retrieves an image from the cache or loads it with LoadContext.
//
// The image is cached under the exact source string provided. Local files are
// stat'ed on every call and decoded again when their size or modification
// time differs from the cached entry. Failed loads are not cached and drop
// any stale entry for the source.
func (c *SourceCache) Load(ctx context.Context, source string) (image.Image, error) {
	var info os.FileInfo
	if !isURL(source) {
		fi, err := os.Stat(source)
		if err != nil {
			c.Evict(source)
			return nil, fmt.Errorf("%w: failed to open image: %v", ErrDecode, err)
		}
		info = fi
	}

	c.mu.RLock()
	entry, ok := c.images[source]
	c.mu.RUnlock()
	if ok && entry.matches(info) {
		return entry.img, nil
	}

	img, err := LoadContext(ctx, source)
	if err != nil {
		c.Evict(source)
		return nil, err
	}

	entry = cacheEntry{img: img}
	if info != nil {
		entry.modTime, entry.size = info.ModTime(), info.Size()
	}
	c.mu.Lock()
	c.images[source] = entry
	c.mu.Unlock()

	return img, nil
}

// Evict removes a single source from the cache. Unknown sources are ignored.
func (c *SourceCache) Evict(source string) {
	c.mu.Lock()
	delete(c.images, source)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Load decodes an image from a file path or http(s) URL.
func Load(source string) (image.Image, error) {
	return LoadContext(context.Background(), source)
}

// LoadContext decodes an image from a file path or http(s) URL. The context
// bounds the download; it has no effect on local files.
//
// Supported formats are PNG, JPEG, GIF and WebP. EXIF orientation is applied
// so that phone screenshots come out upright.
func LoadContext(ctx context.Context, source string) (image.Image, error) {
	if isURL(source) {
		return loadURL(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image: %v", ErrDecode, err)
	}
	defer f.Close()

	return decode(f)
}

// DecodeBytes decodes an in-memory image blob.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrDecode)
	}
	return decode(bytes.NewReader(data))
}

func decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func loadURL(ctx context.Context, source string) (image.Image, error) {
	if _, err := url.Parse(source); err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", ErrDecode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrDecode, err)
	}
	req.Header.Set("User-Agent", "glucose-digitizer/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download image: %v", ErrDecode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download image: HTTP %d", ErrDecode, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %v", ErrDecode, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrDecode, maxDownloadBytes)
	}

	return DecodeBytes(data)
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "webp" or "unknown", detected from the
	// source extension.
	Format string `json:"format"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
func LoadImageInfo(ctx context.Context, cache *SourceCache, source string) (*ImageInfo, error) {
	img, err := cache.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	format := "unknown"
	lower := strings.ToLower(source)
	if i := strings.IndexAny(lower, "?#"); i >= 0 && isURL(lower) {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".png"):
		format = "png"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		format = "jpeg"
	case strings.HasSuffix(lower, ".gif"):
		format = "gif"
	case strings.HasSuffix(lower, ".webp"):
		format = "webp"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Format:   format,
		HasAlpha: hasAlpha,
	}, nil
}
