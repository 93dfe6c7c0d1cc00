package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dollaghosh1/wbpower-project/internal/apperr"
	"github.com/dollaghosh1/wbpower-project/internal/fieldtype"
	"github.com/dollaghosh1/wbpower-project/internal/models"
	"github.com/dollaghosh1/wbpower-project/internal/service"
)

type RecordHandler struct {
	svc            *service.RecordService
	defaultExclude []string
	maxUpload      int64
}

func NewRecordHandler(svc *service.RecordService, defaultExclude []string, maxUpload int64) *RecordHandler {
	return &RecordHandler{svc: svc, defaultExclude: defaultExclude, maxUpload: maxUpload}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	exclude := h.defaultExclude
	if q := r.URL.Query(); q.Has("exclude") {
		exclude = splitList(q.Get("exclude"))
	}
	recs, err := h.svc.List(r.Context(), chi.URLParam(r, "table"), exclude)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": recs})
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "table"), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	values, files, cleanup, err := h.readSubmission(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer cleanup()

	id, err := h.svc.Create(r.Context(), chi.URLParam(r, "table"), values, files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	values, files, cleanup, err := h.readSubmission(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer cleanup()

	if err := h.svc.Update(r.Context(), chi.URLParam(r, "table"), id, values, files); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *RecordHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req map[string]any
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	raw, ok := req[models.ColumnIsActive]
	if !ok {
		raw, ok = req["status"]
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}
	active, err := fieldtype.ColumnBoolean.Coerce(raw)
	if err != nil || active == nil {
		writeError(w, http.StatusBadRequest, "is_active must be a boolean")
		return
	}
	if err := h.svc.SetActive(r.Context(), chi.URLParam(r, "table"), id, active.(bool)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, models.ColumnIsActive: active})
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "table"), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

// readSubmission accepts multipart forms (fields plus files), urlencoded
// forms and JSON objects. Form keys starting with "_" (_token, _method)
// are framework noise and dropped. The returned cleanup closes any opened
// upload parts.
func (h *RecordHandler) readSubmission(w http.ResponseWriter, r *http.Request) (map[string]any, map[string]service.Upload, func(), error) {
	noop := func() {}
	ct := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return nil, nil, noop, apperr.Invalid("invalid multipart body: %v", err)
		}
		values := formValues(r.MultipartForm.Value)
		files := make(map[string]service.Upload, len(r.MultipartForm.File))
		opened := make([]multipart.File, 0, len(r.MultipartForm.File))
		cleanup := func() {
			for _, f := range opened {
				f.Close()
			}
			r.MultipartForm.RemoveAll()
		}
		for key, headers := range r.MultipartForm.File {
			if len(headers) == 0 || strings.HasPrefix(key, "_") {
				continue
			}
			fh := headers[0]
			f, err := fh.Open()
			if err != nil {
				cleanup()
				return nil, nil, noop, apperr.Invalid("unreadable upload %q", fh.Filename)
			}
			opened = append(opened, f)
			files[key] = service.Upload{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			}
		}
		return values, files, cleanup, nil

	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return nil, nil, noop, apperr.Invalid("invalid form body: %v", err)
		}
		return formValues(r.PostForm), nil, noop, nil

	default:
		values := map[string]any{}
		if err := readJSON(r, &values); err != nil && err != io.EOF {
			return nil, nil, noop, apperr.Invalid("invalid request body")
		}
		return values, nil, noop, nil
	}
}

func formValues(form map[string][]string) map[string]any {
	values := make(map[string]any, len(form))
	for k, vs := range form {
		if len(vs) == 0 || strings.HasPrefix(k, "_") {
			continue
		}
		values[k] = vs[0]
	}
	return values
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
