package thumbnail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestCacheGet(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg"))
	}))
	defer ts.Close()

	c, err := NewCache(2)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		img, err := c.Get(context.Background(), "abc", ts.URL)
		if err != nil {
			t.Fatal(err)
		}
		if img.ContentType != "image/jpeg" || string(img.Data) != "jpeg" {
			t.Fatalf("unexpected image %+v", img)
		}
	}

	if hits.Load() != 1 {
		t.Fatalf("expected a single download, got %d", hits.Load())
	}
}

func TestCacheMissingURL(t *testing.T) {
	c, _ := NewCache(1)

	if _, err := c.Get(context.Background(), "nope", ""); err != ErrNoThumbnail {
		t.Fatalf("expected ErrNoThumbnail, got %v", err)
	}
}

func TestCacheUpstreamFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c, _ := NewCache(1)
	if _, err := c.Get(context.Background(), "abc", ts.URL); err == nil {
		t.Fatal("expected an error")
	}
}
