package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/scheduler"
	"github.com/erazemk/lostfound/internal/uploads"
)

// Deps holds what the API handlers need.
type Deps struct {
	DB        *sql.DB
	Engine    *lifecycle.Engine
	Scheduler *scheduler.Scheduler
	Uploads   *uploads.Store
	JWTSecret string
}

// NewRouter creates the API router with all endpoints registered. It also
// serves /health and /uploads/.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret}
	itemsHandler := &ItemsHandler{DB: d.DB, Engine: d.Engine, Uploads: d.Uploads}
	systemHandler := &SystemHandler{Scheduler: d.Scheduler, Uploads: d.Uploads}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)

	// Public.
	mux.HandleFunc("GET /health", systemHandler.Health)
	mux.HandleFunc("GET /uploads/{name}", systemHandler.Image)
	mux.HandleFunc("POST /api/admin/login", authHandler.Login)

	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/collected", itemsHandler.ListCollected)
	mux.HandleFunc("GET /api/items/archived", itemsHandler.ListArchived)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/statistics", itemsHandler.Statistics)

	// Admin.
	mux.Handle("POST /api/admin/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/admin/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	mux.Handle("PUT /api/items/{id}/collect", authMW(http.HandlerFunc(itemsHandler.Collect)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("POST /api/items/clear-history", authMW(http.HandlerFunc(itemsHandler.ClearHistory)))
	mux.Handle("POST /api/items/clear-active", authMW(http.HandlerFunc(itemsHandler.ClearActive)))
	mux.Handle("POST /api/auto-archive", authMW(http.HandlerFunc(systemHandler.AutoArchive)))

	return mux
}
