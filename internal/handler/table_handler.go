package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dollaghosh1/wbpower-project/internal/models"
	"github.com/dollaghosh1/wbpower-project/internal/service"
)

// TableHandler serves table creation, listing and the schema endpoints the
// admin UI builds its forms from.
type TableHandler struct {
	svc          *service.TableService
	assetBaseURL string
}

func NewTableHandler(svc *service.TableService, assetBaseURL string) *TableHandler {
	return &TableHandler{svc: svc, assetBaseURL: assetBaseURL}
}

func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableName  string           `json:"tableName"`
		TableName2 string           `json:"table_name"`
		Fields     models.FieldList `json:"fields"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := req.TableName
	if name == "" {
		name = req.TableName2
	}
	desc, err := h.svc.CreateTable(r.Context(), name, req.Fields)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"tableName": desc.TableName})
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.ListTables(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (h *TableHandler) Fields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.svc.FormFields(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fields":       fields,
		"assetBaseUrl": h.assetBaseURL,
	})
}

func (h *TableHandler) Columns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.svc.Describe(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": cols})
}
