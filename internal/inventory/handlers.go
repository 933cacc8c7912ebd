package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/server"
	"github.com/aldenmeer/gridline/internal/services"
	"github.com/aldenmeer/gridline/internal/session"
	"github.com/aldenmeer/gridline/pkg/grid"
	"github.com/aldenmeer/gridline/pkg/models"
)

// viewRequest is the JSON shape for reading and writing the session's
// grid view.
type viewRequest struct {
	Search   string      `json:"search"`
	Category string      `json:"category"`
	Status   string      `json:"status"`
	Sort     []grid.Sort `json:"sort"`
	PageSize int         `json:"page_size"`
}

// handleListItems serves one grid page. Paging and per-request sort come
// from query parameters; the filter and default sort come from the
// session's stored view.
func (m *Module) handleListItems(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	view := session.Get[services.GridView](sess)
	if view.PageSize == 0 {
		view.PageSize = m.pageSize
	}

	page := intParam(r, "page", 0)
	pageSize := intParam(r, "page_size", 0)
	q := view.Query(page, pageSize)
	if sortParam := r.URL.Query().Get("sort"); sortParam != "" {
		q.Sort = parseSorts(sortParam)
	}

	rows, err := m.source.Fetch(r.Context(), q)
	if err != nil {
		m.respondFetchError(w, r, err)
		return
	}
	total, err := m.source.Count(r.Context(), q.Filter)
	if err != nil {
		m.respondFetchError(w, r, err)
		return
	}

	writeJSON(w, services.ListResult[models.Item]{Items: rows, Total: total})
}

func (m *Module) respondFetchError(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Error("item grid query failed", zap.Error(err))
	server.InternalError(w, "item query failed", r.URL.Path)
}

func (m *Module) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	item, err := m.items.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "item "+id+" not found", r.URL.Path)
			return
		}
		m.logger.Error("get item failed", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "get item failed", r.URL.Path)
		return
	}
	writeJSON(w, item)
}

func (m *Module) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		server.BadRequest(w, "invalid item payload: "+err.Error(), r.URL.Path)
		return
	}
	if item.SKU == "" || item.Name == "" {
		server.BadRequest(w, "sku and name are required", r.URL.Path)
		return
	}

	if err := m.items.Create(r.Context(), &item); err != nil {
		if errors.Is(err, services.ErrAlreadyExists) {
			server.Conflict(w, "sku "+item.SKU+" already exists", r.URL.Path)
			return
		}
		m.logger.Error("create item failed", zap.Error(err))
		server.InternalError(w, "create item failed", r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (m *Module) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	id := r.PathValue("id")
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		server.BadRequest(w, "invalid item payload: "+err.Error(), r.URL.Path)
		return
	}
	item.ID = id

	if err := m.items.Update(r.Context(), &item); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "item "+id+" not found", r.URL.Path)
			return
		}
		if errors.Is(err, services.ErrAlreadyExists) {
			server.Conflict(w, "sku "+item.SKU+" already exists", r.URL.Path)
			return
		}
		m.logger.Error("update item failed", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "update item failed", r.URL.Path)
		return
	}
	writeJSON(w, item)
}

func (m *Module) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if !requireLogin(w, r) {
		return
	}

	id := r.PathValue("id")
	if err := m.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, "item "+id+" not found", r.URL.Path)
			return
		}
		m.logger.Error("delete item failed", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "delete item failed", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetView returns the session's stored grid view.
func (m *Module) handleGetView(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	view := session.Get[services.GridView](sess)
	if view.PageSize == 0 {
		view.PageSize = m.pageSize
	}

	writeJSON(w, viewRequest{
		Search:   view.Search,
		Category: view.Category,
		Status:   view.Status,
		Sort:     view.Sort,
		PageSize: view.PageSize,
	})
}

// handleSetView replaces the session's grid view.
func (m *Module) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid view payload: "+err.Error(), r.URL.Path)
		return
	}
	if req.Category != "" && !validCategory(req.Category) {
		server.BadRequest(w, "unknown category "+req.Category, r.URL.Path)
		return
	}
	if req.Status != "" && !validStatus(req.Status) {
		server.BadRequest(w, "unknown status "+req.Status, r.URL.Path)
		return
	}
	if req.PageSize < 0 || req.PageSize > 1000 {
		server.BadRequest(w, "page_size out of range", r.URL.Path)
		return
	}

	sess := session.FromContext(r.Context())
	view := session.Get[services.GridView](sess)
	view.Search = req.Search
	view.Category = req.Category
	view.Status = req.Status
	view.Sort = req.Sort
	if req.PageSize > 0 {
		view.PageSize = req.PageSize
	}

	w.WriteHeader(http.StatusNoContent)
}

// requireLogin rejects the request with 401 unless the session is
// authenticated.
func requireLogin(w http.ResponseWriter, r *http.Request) bool {
	sess := session.FromContext(r.Context())
	if !session.Get[services.AuthState](sess).LoggedIn() {
		server.Unauthorized(w, "login required", r.URL.Path)
		return false
	}
	return true
}

// parseSorts parses a comma-separated sort parameter; a leading '-' marks
// descending, e.g. "-quantity,name".
func parseSorts(param string) []grid.Sort {
	var sorts []grid.Sort
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		sorts = append(sorts, grid.Sort{Field: strings.TrimPrefix(part, "-"), Desc: desc})
	}
	return sorts
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func validCategory(c string) bool {
	switch models.ItemCategory(c) {
	case models.CategoryHardware, models.CategoryElectrical,
		models.CategoryConsumables, models.CategoryTooling, models.CategoryOther:
		return true
	}
	return false
}

func validStatus(s string) bool {
	switch models.ItemStatus(s) {
	case models.ItemStatusInStock, models.ItemStatusLowStock,
		models.ItemStatusOutOfStock, models.ItemStatusDiscontinued:
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
