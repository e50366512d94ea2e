package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/uploads"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Engine  *lifecycle.Engine
	Uploads *uploads.Store
}

type createItemRequest struct {
	Description        string `json:"description"`
	FoundLocation      string `json:"found_location"`
	CollectionLocation string `json:"collection_location"`
}

type collectRequest struct {
	CollectedBy string `json:"collected_by"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list active items", store.ListActiveItems)
}

// ListCollected handles GET /api/items/collected.
func (h *ItemsHandler) ListCollected(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list collected items", store.ListCollectedItems)
}

// ListArchived handles GET /api/items/archived.
func (h *ItemsHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list archived items", store.ListArchivedItems)
}

func (h *ItemsHandler) list(w http.ResponseWriter, r *http.Request, op string, fn store.ListFunc) {
	items, err := fn(r.Context(), h.DB)
	if err != nil {
		writeError(w, &model.StoreError{Op: op, Err: err})
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. It accepts a multipart form with an optional
// "image" file, or a JSON body without an image.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var n model.NewItem

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		// Leave room for the text fields next to the image.
		r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))
		if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
			jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
			return
		}

		n.Description = r.FormValue("description")
		n.FoundLocation = r.FormValue("found_location")
		n.CollectionLocation = r.FormValue("collection_location")

		name, err := h.saveImage(r)
		if err != nil {
			writeError(w, err)
			return
		}
		n.ImagePath = name
	} else {
		var req createItemRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		n.Description = req.Description
		n.FoundLocation = req.FoundLocation
		n.CollectionLocation = req.CollectionLocation
	}

	item, err := h.Engine.CreateItem(r.Context(), n)
	if err != nil {
		if n.ImagePath != "" {
			if rmErr := h.Uploads.Remove(n.ImagePath); rmErr != nil {
				slog.Warn("failed to remove orphaned image", "image", n.ImagePath, "error", rmErr)
			}
		}
		writeError(w, err)
		return
	}

	slog.Info("item reported", "item", item.ID, "found_location", item.FoundLocation)
	jsonResponse(w, http.StatusCreated, item)
}

// saveImage stores the optional "image" form file and returns its name, or
// "" when no file was sent.
func (h *ItemsHandler) saveImage(r *http.Request) (string, error) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", &model.ValidationError{Field: "image", Message: "invalid image upload"}
	}
	defer file.Close()

	return h.Uploads.SaveImage(file)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, &model.StoreError{Op: "get item", Err: err})
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Collect handles PUT /api/items/{id}/collect.
func (h *ItemsHandler) Collect(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req collectRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Engine.MarkCollected(r.Context(), id, req.CollectedBy); err != nil {
		writeError(w, err)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, &model.StoreError{Op: "get item", Err: err})
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	slog.Info("item collected", "admin", GetClaims(r.Context()).Username, "item", id, "collected_by", item.CollectedBy)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	deleted, err := h.Engine.DeleteItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	slog.Info("item deleted", "admin", GetClaims(r.Context()).Username, "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ClearHistory handles POST /api/items/clear-history.
func (h *ItemsHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.ClearCollectionHistory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("collection history cleared", "admin", GetClaims(r.Context()).Username, "count", n)
	jsonResponse(w, http.StatusOK, map[string]int{"cleared": n})
}

// ClearActive handles POST /api/items/clear-active.
func (h *ItemsHandler) ClearActive(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.ClearActiveItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("active items cleared", "admin", GetClaims(r.Context()).Username, "count", n)
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": n})
}

// Statistics handles GET /api/statistics.
func (h *ItemsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStatistics(r.Context(), h.DB)
	if err != nil {
		writeError(w, &model.StoreError{Op: "read statistics", Err: err})
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
