package handler

import (
	"net/http"

	"github.com/dollaghosh1/wbpower-project/internal/models"
	"github.com/dollaghosh1/wbpower-project/internal/service"
)

type DashboardHandler struct {
	tableSvc  *service.TableService
	recordSvc *service.RecordService
}

func NewDashboardHandler(tableSvc *service.TableService, recordSvc *service.RecordService) *DashboardHandler {
	return &DashboardHandler{tableSvc: tableSvc, recordSvc: recordSvc}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tableSvc.ListTables(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	total := 0
	stats := make([]map[string]any, 0, len(tables))
	for _, t := range tables {
		cols, err := h.tableSvc.Columns(r.Context(), t)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		count, err := h.recordSvc.Count(r.Context(), t)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		total += count

		fieldCount := 0
		for _, c := range cols {
			if !models.IsSystemColumn(c) {
				fieldCount++
			}
		}
		stats = append(stats, map[string]any{
			"tableName":   t,
			"fieldCount":  fieldCount,
			"recordCount": count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tableCount":  len(tables),
		"recordCount": total,
		"tables":      stats,
	})
}
