package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const maxImageSize = 8 << 20

var ErrNoThumbnail = errors.New("no thumbnail available")

type Image struct {
	ContentType string
	Data        []byte
}

// Cache keeps the thumbnails of the most recent previews in memory, keyed by
// media id.
type Cache struct {
	client *http.Client
	images *lru.Cache[string, Image]
}

func NewCache(size int) (*Cache, error) {
	images, err := lru.New[string, Image](size)
	if err != nil {
		return nil, err
	}

	return &Cache{
		client: &http.Client{Timeout: 15 * time.Second},
		images: images,
	}, nil
}

// Get returns the cached image, downloading it from url on a miss.
func (c *Cache) Get(ctx context.Context, id, url string) (Image, error) {
	if img, ok := c.images.Get(id); ok {
		return img, nil
	}

	if url == "" {
		return Image{}, ErrNoThumbnail
	}

	img, err := c.fetch(ctx, url)
	if err != nil {
		return Image{}, err
	}

	c.images.Add(id, img)
	return img, nil
}

// Prefetch warms the cache in the background.
func (c *Cache) Prefetch(id, url string) {
	if url == "" || c.images.Contains(id) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := c.Get(ctx, id, url); err != nil {
			slog.Warn("thumbnail prefetch failed", slog.String("id", id), slog.Any("err", err))
		}
	}()
}

func (c *Cache) fetch(ctx context.Context, url string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("thumbnail request failed: %s", res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxImageSize))
	if err != nil {
		return Image{}, err
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return Image{ContentType: contentType, Data: data}, nil
}
