package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
)

// LoginPage handles GET /admin/login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Admin login"})
}

// LoginSubmit handles POST /admin/login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin login",
			Error: "Enter your username and password.",
		})
		return
	}

	token, admin, err := auth.Login(r.Context(), s.DB, s.JWTSecret, username, password)
	if err != nil {
		msg := "Invalid username or password."
		if errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		} else {
			slog.Error("login error", "error", err)
			msg = "Login failed, try again."
		}
		s.Templates.Render(w, "login.html", &PageData{Title: "Admin login", Error: msg})
		return
	}

	setAuthCookie(w, token)
	slog.Info("admin logged in", "admin", admin.Username)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /admin/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	if err := auth.Logout(r.Context(), s.DB, claims); err != nil {
		slog.Error("failed to revoke token", "error", err)
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// PasswordSubmit handles POST /admin/password.
func (s *Server) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	if current == "" || next == "" {
		redirectAdmin(w, r, "", "Enter the current and the new password.")
		return
	}
	if next != r.FormValue("confirm_password") {
		redirectAdmin(w, r, "", "The new passwords do not match.")
		return
	}

	err := auth.ChangePassword(r.Context(), s.DB, claims.AdminID, current, next)
	var ve *model.ValidationError
	switch {
	case err == nil:
		redirectAdmin(w, r, "Password changed.", "")
	case errors.Is(err, auth.ErrWrongPassword):
		redirectAdmin(w, r, "", "The current password is incorrect.")
	case errors.As(err, &ve):
		redirectAdmin(w, r, "", ve.Message)
	default:
		slog.Error("failed to change password", "admin", claims.Username, "error", err)
		redirectAdmin(w, r, "", "Failed to change the password.")
	}
}
