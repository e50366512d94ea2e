package web

import (
	"fmt"
	"net/http"

	webembed "github.com/erazemk/lostfound/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(s *Server) (http.Handler, error) {
	if s.Templates == nil {
		templates, err := LoadTemplates()
		if err != nil {
			return nil, err
		}
		s.Templates = templates
	}

	static, err := webembed.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("opening static assets: %w", err)
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(s.JWTSecret, s.DB)
	protect := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// Student pages.
	mux.HandleFunc("GET /{$}", s.StudentPage)
	mux.HandleFunc("POST /report", s.ReportSubmit)

	// Admin login.
	mux.HandleFunc("GET /admin/login", s.LoginPage)
	mux.HandleFunc("POST /admin/login", s.LoginSubmit)

	// Admin pages.
	mux.Handle("POST /admin/logout", protect(s.Logout))
	mux.Handle("GET /admin", protect(s.Dashboard))
	mux.Handle("POST /admin/items/{id}/collect", protect(s.CollectSubmit))
	mux.Handle("POST /admin/items/{id}/delete", protect(s.DeleteSubmit))
	mux.Handle("POST /admin/clear-history", protect(s.ClearHistorySubmit))
	mux.Handle("POST /admin/clear-active", protect(s.ClearActiveSubmit))
	mux.Handle("POST /admin/archive", protect(s.ArchiveSubmit))
	mux.Handle("POST /admin/password", protect(s.PasswordSubmit))

	return mux, nil
}
