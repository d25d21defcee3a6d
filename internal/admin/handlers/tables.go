package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/colonnadedb/colonnade/internal/logger"
	"github.com/colonnadedb/colonnade/pkg/storage"
)

// TableHandler handles table management endpoints.
//
// The handlers operate directly on the storage engine, bypassing the query
// layer: the admin API is an operator surface, not a client surface, so
// statements, consistency and the native error registry do not apply here.
type TableHandler struct {
	store storage.Store
}

// NewTableHandler creates a new table handler.
func NewTableHandler(store storage.Store) *TableHandler {
	return &TableHandler{store: store}
}

// TableResponse describes one table in API responses.
type TableResponse struct {
	Name       string `json:"name"`
	DefaultTTL string `json:"default_ttl,omitempty"`
}

// List handles GET /v1/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.Tables(r.Context())
	if err != nil {
		logger.Error("Failed to list tables", "error", err)
		InternalError(w, "Failed to list tables")
		return
	}

	resp := make([]TableResponse, 0, len(tables))
	for _, t := range tables {
		tr := TableResponse{Name: t.Name}
		if t.Options.DefaultTTL > 0 {
			tr.DefaultTTL = t.Options.DefaultTTL.Round(time.Second).String()
		}
		resp = append(resp, tr)
	}

	writeJSON(w, http.StatusOK, okResponse(map[string]interface{}{
		"tables": resp,
		"count":  len(resp),
	}))
}

// Drop handles DELETE /v1/tables/{table}.
func (h *TableHandler) Drop(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	if err := h.store.DropTable(r.Context(), name); err != nil {
		if storage.IsTableNotFoundError(err) {
			NotFound(w, "Table does not exist: "+name)
			return
		}
		logger.Error("Failed to drop table", "table", name, "error", err)
		InternalError(w, "Failed to drop table")
		return
	}

	logger.Info("Table dropped via admin API", "table", name, "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusOK, okResponse(map[string]string{"table": name}))
}

// Truncate handles POST /v1/tables/{table}/truncate.
func (h *TableHandler) Truncate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	if err := h.store.Truncate(r.Context(), name); err != nil {
		if storage.IsTableNotFoundError(err) {
			NotFound(w, "Table does not exist: "+name)
			return
		}
		logger.Error("Failed to truncate table", "table", name, "error", err)
		InternalError(w, "Failed to truncate table")
		return
	}

	logger.Info("Table truncated via admin API", "table", name, "remote_addr", r.RemoteAddr)
	writeJSON(w, http.StatusOK, okResponse(map[string]string{"table": name}))
}
