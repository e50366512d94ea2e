package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/erazemk/lostfound/internal/scheduler"
	"github.com/erazemk/lostfound/internal/uploads"
)

// SystemHandler handles the archive sweep, health and image endpoints.
type SystemHandler struct {
	Scheduler *scheduler.Scheduler
	Uploads   *uploads.Store
}

type healthResponse struct {
	Status    string          `json:"status"`
	Interval  string          `json:"archive_interval"`
	Scheduler scheduler.Stats `json:"archive"`
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Interval:  h.Scheduler.Interval().String(),
		Scheduler: h.Scheduler.Stats(),
	})
}

// AutoArchive handles POST /api/auto-archive.
func (h *SystemHandler) AutoArchive(w http.ResponseWriter, r *http.Request) {
	n, err := h.Scheduler.RunOnce(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("manual archive sweep", "admin", GetClaims(r.Context()).Username, "archived", n)
	jsonResponse(w, http.StatusOK, map[string]int{"archived": n})
}

// Image handles GET /uploads/{name}.
func (h *SystemHandler) Image(w http.ResponseWriter, r *http.Request) {
	path, err := h.Uploads.Path(r.PathValue("name"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
