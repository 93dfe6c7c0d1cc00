// Package storage keeps uploaded files for dynamic records. Callers only see
// the relative path a file was stored under; that path is what ends up in
// the record's column and what the public /uploads route resolves.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Store persists uploaded files under relative slash-separated paths.
type Store interface {
	Put(ctx context.Context, relPath string, r io.Reader, contentType string) error
	Get(ctx context.Context, relPath string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, relPath string) error
}

// UploadPath builds uploads/{table}/{column}/{unix}_{name}. Only the base
// name of the client-supplied file name is kept.
func UploadPath(table, column, fileName string, at time.Time) string {
	return path.Join("uploads", strings.ToLower(table), strings.ToLower(column),
		fmt.Sprintf("%d_%s", at.Unix(), cleanFileName(fileName)))
}

func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '/' || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// cleanRel rejects absolute paths and anything escaping the store root.
func cleanRel(relPath string) (string, error) {
	p := path.Clean("/" + strings.ReplaceAll(relPath, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", fmt.Errorf("storage: empty path")
	}
	return p, nil
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".zip":  "application/zip",
}

// Allowed reports whether fileName has one of the accepted image or
// document extensions.
func Allowed(fileName string) bool {
	_, ok := contentTypes[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// DetectContentType guesses the MIME type from the extension.
func DetectContentType(fileName string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}
