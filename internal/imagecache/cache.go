// Package imagecache decodes and caches the images shown on the canvas.
package imagecache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// Fetcher downloads the bytes behind a backend image reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Source names an image: a local file or a backend reference.
type Source struct {
	Path  string
	Ref   string
	Local bool
}

func LocalFile(path string) Source { return Source{Path: path, Local: true} }
func Remote(ref string) Source     { return Source{Ref: ref} }

// Key identifies the source in the cache and in the UI.
func (s Source) Key() string {
	if s.Local {
		return "file:" + s.Path
	}
	return "ref:" + s.Ref
}

func (s Source) Empty() bool {
	if s.Local {
		return s.Path == ""
	}
	return s.Ref == ""
}

// Cache is safe for concurrent use.
type Cache struct {
	images  *lru.Cache[string, image.Image]
	fetcher Fetcher
	logger  *zap.Logger
}

func New(size int, fetcher Fetcher, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	images, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &Cache{images: images, fetcher: fetcher, logger: logger}, nil
}

// Load returns the decoded image for src, reading or fetching it on a miss.
func (c *Cache) Load(ctx context.Context, src Source) (image.Image, error) {
	if src.Empty() {
		return nil, fmt.Errorf("load image: empty source")
	}
	key := src.Key()
	if img, ok := c.images.Get(key); ok {
		return img, nil
	}

	var (
		data []byte
		err  error
	)
	if src.Local {
		data, err = os.ReadFile(src.Path)
	} else {
		data, err = c.fetcher.Fetch(ctx, src.Ref)
	}
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", key, err)
	}

	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", key, err)
	}
	c.images.Add(key, img)
	c.logger.Debug("image cached", zap.String("key", key), zap.Stringer("bounds", img.Bounds()))
	return img, nil
}

func (c *Cache) Len() int {
	return c.images.Len()
}

// Decode decodes PNG, JPEG or WebP data.
func Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode image: empty %s", format)
	}
	return img, nil
}
