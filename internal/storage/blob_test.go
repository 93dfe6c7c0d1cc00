package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/db"
)

// newBlobStore needs a running oxidb-server; set OXIDB_HOST to enable it.
func newBlobStore(t *testing.T) *BlobStore {
	t.Helper()
	host := os.Getenv("OXIDB_HOST")
	if host == "" {
		t.Skip("OXIDB_HOST not set")
	}
	port := 4444
	if p := os.Getenv("OXIDB_PORT"); p != "" {
		port, _ = strconv.Atoi(p)
	}
	pool, err := db.NewPool(host, port, 2)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	if pool.Size() != 2 {
		t.Fatalf("pool size = %d, want 2", pool.Size())
	}

	bucket := "cms_test_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	s := NewBlobStore(pool, bucket)
	if err := s.EnsureBucket(); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	t.Cleanup(func() { pool.Get().DeleteBucket(bucket) })
	return s
}

func TestBlobEnsureBucketTwice(t *testing.T) {
	s := newBlobStore(t)
	if err := s.EnsureBucket(); err != nil {
		t.Fatalf("second ensure bucket: %v", err)
	}
}

func TestBlobStoreLifecycle(t *testing.T) {
	s := newBlobStore(t)
	ctx := context.Background()
	key := "uploads/custompost_news/cover_image/1726380000_photo.png"

	if err := s.Put(ctx, key, strings.NewReader("png-bytes"), ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, ct, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "png-bytes" {
		t.Errorf("data = %q", data)
	}
	if ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := s.Get(ctx, key); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second delete err = %v", err)
	}
}
