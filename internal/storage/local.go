package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
)

// LocalStore writes files below a root directory on disk, the way the
// site keeps them under its public folder.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) abs(relPath string) (string, error) {
	rel, err := cleanRel(relPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func (s *LocalStore) Put(ctx context.Context, relPath string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.abs(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return apperr.Storage("storage: mkdir", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return apperr.Storage("storage: create", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperr.Storage("storage: write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperr.Storage("storage: close", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return apperr.Storage("storage: rename", err)
	}
	return nil
}

func (s *LocalStore) Get(ctx context.Context, relPath string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	src, err := s.abs(relPath)
	if err != nil {
		return nil, "", apperr.NotFound("file %s", relPath)
	}
	f, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", apperr.NotFound("file %s", relPath)
	}
	if err != nil {
		return nil, "", apperr.Storage("storage: open", err)
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, "", apperr.NotFound("file %s", relPath)
	}
	return f, DetectContentType(src), nil
}

func (s *LocalStore) Delete(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.abs(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Storage("storage: remove", err)
	}
	return nil
}
