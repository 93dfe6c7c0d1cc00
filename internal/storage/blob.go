package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/parisxmas/OxiDB/go/oxidb"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/db"
)

// BlobStore keeps uploads in an OxiDB blob bucket, keyed by their relative
// path.
type BlobStore struct {
	pool   *db.Pool
	bucket string
}

func NewBlobStore(pool *db.Pool, bucket string) *BlobStore {
	return &BlobStore{pool: pool, bucket: bucket}
}

// EnsureBucket creates the bucket; an existing bucket is not an error.
func (s *BlobStore) EnsureBucket() error {
	err := s.pool.Get().CreateBucket(s.bucket)
	if err == nil || oxidb.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func (s *BlobStore) Put(ctx context.Context, relPath string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanRel(relPath)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return apperr.Storage("blob: read upload", err)
	}
	if contentType == "" {
		contentType = DetectContentType(key)
	}
	if _, err := s.pool.Get().PutObject(s.bucket, key, data, contentType, nil); err != nil {
		return apperr.Storage("blob: put "+key, err)
	}
	return nil
}

func (s *BlobStore) Get(ctx context.Context, relPath string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	key, err := cleanRel(relPath)
	if err != nil {
		return nil, "", apperr.NotFound("file %s", relPath)
	}
	data, meta, err := s.pool.Get().GetObject(s.bucket, key)
	if oxidb.IsNotFound(err) {
		return nil, "", apperr.NotFound("file %s", relPath)
	}
	if err != nil {
		return nil, "", apperr.Storage("blob: get "+key, err)
	}
	ct, _ := meta["content_type"].(string)
	if ct == "" {
		ct = DetectContentType(key)
	}
	return io.NopCloser(bytes.NewReader(data)), ct, nil
}

func (s *BlobStore) Delete(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanRel(relPath)
	if err != nil {
		return err
	}
	if err := s.pool.Get().DeleteObject(s.bucket, key); err != nil && !oxidb.IsNotFound(err) {
		return apperr.Storage("blob: delete "+key, err)
	}
	return nil
}
