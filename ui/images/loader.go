package images

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/soocke/fastlabel-go/domain/annotation"
)

// ErrNotImage is returned for paths without a supported extension.
var ErrNotImage = errors.New("unsupported image type")

var supported = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".webp": true, ".tif": true, ".tiff": true,
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool { return supported[strings.ToLower(filepath.Ext(path))] }

// ListDir returns the supported images directly inside dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Open decodes the image at path, applying EXIF orientation.
func Open(path string) (image.Image, error) {
	if !IsImage(path) {
		return nil, fmt.Errorf("open %s: %w", path, ErrNotImage)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

// DecodeSize reads only the image header.
func DecodeSize(path string) (annotation.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return annotation.Size{}, fmt.Errorf("size %s: %w", path, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return annotation.Size{}, fmt.Errorf("size %s: %w", path, err)
	}
	return annotation.Size{W: cfg.Width, H: cfg.Height}, nil
}

// Cache keeps recently decoded images. It is safe for concurrent use so the
// inference worker can share it with the UI.
type Cache struct {
	logger *slog.Logger
	lru    *lru.Cache[string, image.Image]
	open   func(string) (image.Image, error)
}

// NewCache returns a cache holding up to size images.
func NewCache(logger *slog.Logger, size int) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 16
	}
	c, _ := lru.New[string, image.Image](size)
	return &Cache{logger: logger, lru: c, open: Open}
}

// Load returns the cached image or decodes and caches it.
func (c *Cache) Load(path string) (image.Image, error) {
	if img, ok := c.lru.Get(path); ok {
		return img, nil
	}
	img, err := c.open(path)
	if err != nil {
		return nil, err
	}
	if evicted := c.lru.Add(path, img); evicted {
		c.logger.Debug("image cache eviction", "path", path)
	}
	return img, nil
}

// Size returns the dimensions of path, from the cache when possible.
func (c *Cache) Size(path string) (annotation.Size, error) {
	if img, ok := c.lru.Peek(path); ok {
		b := img.Bounds()
		return annotation.Size{W: b.Dx(), H: b.Dy()}, nil
	}
	return DecodeSize(path)
}

// Forget drops path so the next Load re-reads the file.
func (c *Cache) Forget(path string) { c.lru.Remove(path) }

// Len is the number of cached images.
func (c *Cache) Len() int { return c.lru.Len() }
