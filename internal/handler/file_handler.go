package handler

import (
	"io"
	"log"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/dollaghosh1/wbpower-project/internal/storage"
)

// FileHandler serves stored uploads by the relative path kept in records.
type FileHandler struct {
	store storage.Store
}

func NewFileHandler(store storage.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rel := path.Join("uploads", chi.URLParam(r, "*"))
	rc, contentType, err := h.store.Get(r.Context(), rel)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(rel)+`"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Warning: serve %s: %v", rel, err)
	}
}
