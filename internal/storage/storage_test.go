package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
)

func TestUploadPath(t *testing.T) {
	at := time.Unix(1726380000, 0)
	cases := []struct {
		table, column, name, want string
	}{
		{"custompost_news", "cover_image", "photo.png", "uploads/custompost_news/cover_image/1726380000_photo.png"},
		{"custompost_news", "Cover_Image", "My Doc.pdf", "uploads/custompost_news/cover_image/1726380000_My Doc.pdf"},
		{"custompost_news", "file", "../../etc/passwd", "uploads/custompost_news/file/1726380000_passwd"},
		{"custompost_news", "file", `C:\Users\me\cv.docx`, "uploads/custompost_news/file/1726380000_cv.docx"},
		{"custompost_news", "file", "", "uploads/custompost_news/file/1726380000_file"},
	}
	for _, c := range cases {
		if got := UploadPath(c.table, c.column, c.name, at); got != c.want {
			t.Errorf("UploadPath(%q, %q, %q) = %q, want %q", c.table, c.column, c.name, got, c.want)
		}
	}
}

func TestAllowedAndContentType(t *testing.T) {
	if !Allowed("a.JPG") || !Allowed("report.pdf") || !Allowed("sheet.xlsx") {
		t.Error("expected common image/document types to be allowed")
	}
	if Allowed("run.exe") || Allowed("noext") {
		t.Error("unexpected type allowed")
	}
	if ct := DetectContentType("x.png"); ct != "image/png" {
		t.Errorf("png content type = %q", ct)
	}
	if ct := DetectContentType("x.bin"); ct != "application/octet-stream" {
		t.Errorf("fallback content type = %q", ct)
	}
}

func TestLocalStoreLifecycle(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	rel := "uploads/custompost_news/cover_image/1_a.png"

	if err := s.Put(ctx, rel, strings.NewReader("png-bytes"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "uploads", "custompost_news", "cover_image", "1_a.png")); err != nil {
		t.Fatalf("file not on disk: %v", err)
	}

	rc, ct, err := s.Get(ctx, rel)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "png-bytes" || ct != "image/png" {
		t.Fatalf("got %q (%s)", data, ct)
	}

	if err := s.Delete(ctx, rel); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := s.Get(ctx, rel); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want not found", err)
	}
	if err := s.Delete(ctx, rel); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestLocalStoreStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "public")
	s, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Put(context.Background(), "../escape.txt", strings.NewReader("x"), ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(parent, "escape.txt")); err == nil {
		t.Fatal("file escaped the store root")
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Fatalf("expected file inside root: %v", err)
	}
	if _, _, err := s.Get(context.Background(), "uploads"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("directory get err = %v, want not found", err)
	}
}
