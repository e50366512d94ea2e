package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/scheduler"
	"github.com/erazemk/lostfound/internal/store"
)

// Dashboard handles GET /admin.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	stats, err := store.GetStatistics(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to read statistics", "error", err)
		stats = &model.Statistics{}
	}
	active, err := store.ListActiveItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list active items", "error", err)
	}
	collected, err := store.ListCollectedItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list collected items", "error", err)
	}
	archived, err := store.ListArchivedItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list archived items", "error", err)
	}

	s.Templates.Render(w, "admin.html", &struct {
		PageData
		Stats     *model.Statistics
		Active    []model.Item
		Collected []model.Item
		Archived  []model.Item
		Sweeps    scheduler.Stats
	}{
		PageData:  flash(r, "Dashboard", claims),
		Stats:     stats,
		Active:    active,
		Collected: collected,
		Archived:  archived,
		Sweeps:    s.Scheduler.Stats(),
	})
}

// CollectSubmit handles POST /admin/items/{id}/collect.
func (s *Server) CollectSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	collectedBy := r.FormValue("collected_by")
	if err := s.Engine.MarkCollected(r.Context(), id, collectedBy); err != nil {
		redirectAdmin(w, r, "", userMessage(err))
		return
	}

	slog.Info("item collected", "admin", claims.Username, "item", id, "collected_by", collectedBy)
	redirectAdmin(w, r, "Item marked as collected.", "")
}

// DeleteSubmit handles POST /admin/items/{id}/delete.
func (s *Server) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := s.Engine.DeleteItem(r.Context(), id)
	if err != nil {
		redirectAdmin(w, r, "", userMessage(err))
		return
	}
	if !deleted {
		redirectAdmin(w, r, "", "The item no longer exists.")
		return
	}

	slog.Info("item deleted", "admin", claims.Username, "item", id)
	redirectAdmin(w, r, "Item deleted.", "")
}

// ClearHistorySubmit handles POST /admin/clear-history.
func (s *Server) ClearHistorySubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	n, err := s.Engine.ClearCollectionHistory(r.Context())
	if err != nil {
		redirectAdmin(w, r, "", userMessage(err))
		return
	}

	slog.Info("collection history cleared", "admin", claims.Username, "count", n)
	redirectAdmin(w, r, fmt.Sprintf("%d collected items returned to the active list.", n), "")
}

// ClearActiveSubmit handles POST /admin/clear-active.
func (s *Server) ClearActiveSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	n, err := s.Engine.ClearActiveItems(r.Context())
	if err != nil {
		redirectAdmin(w, r, "", userMessage(err))
		return
	}

	slog.Info("active items cleared", "admin", claims.Username, "count", n)
	redirectAdmin(w, r, fmt.Sprintf("%d active items deleted.", n), "")
}

// ArchiveSubmit handles POST /admin/archive.
func (s *Server) ArchiveSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	n, err := s.Scheduler.RunOnce(r.Context())
	if err != nil {
		redirectAdmin(w, r, "", userMessage(err))
		return
	}

	slog.Info("manual archive sweep", "admin", claims.Username, "archived", n)
	redirectAdmin(w, r, fmt.Sprintf("%d items archived.", n), "")
}
