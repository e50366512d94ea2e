package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// StudentPage handles GET /.
func (s *Server) StudentPage(w http.ResponseWriter, r *http.Request) {
	active, err := store.ListActiveItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list active items", "error", err)
	}
	archived, err := store.ListArchivedItems(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list archived items", "error", err)
	}

	s.Templates.Render(w, "student.html", &struct {
		PageData
		Active   []model.Item
		Archived []model.Item
	}{
		PageData: flash(r, "Lost & Found", nil),
		Active:   active,
		Archived: archived,
	})
}

// ReportSubmit handles POST /report.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		redirectHome(w, r, "", "The photo is too large (limit 5 MB).")
		return
	}

	n := model.NewItem{
		Description:        r.FormValue("description"),
		FoundLocation:      r.FormValue("found_location"),
		CollectionLocation: r.FormValue("collection_location"),
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		name, err := s.Uploads.SaveImage(file)
		file.Close()
		if err != nil {
			redirectHome(w, r, "", userMessage(err))
			return
		}
		n.ImagePath = name
	case !errors.Is(err, http.ErrMissingFile):
		redirectHome(w, r, "", "The photo could not be read.")
		return
	}

	item, err := s.Engine.CreateItem(r.Context(), n)
	if err != nil {
		if n.ImagePath != "" {
			if rmErr := s.Uploads.Remove(n.ImagePath); rmErr != nil {
				slog.Warn("failed to remove orphaned image", "image", n.ImagePath, "error", rmErr)
			}
		}
		redirectHome(w, r, "", userMessage(err))
		return
	}

	slog.Info("item reported", "item", item.ID, "found_location", item.FoundLocation)
	redirectHome(w, r, "Thank you, the item has been reported.", "")
}

// userMessage turns a domain error into text safe to show on a page.
func userMessage(err error) string {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, model.ErrNotFound):
		return "The item no longer exists."
	default:
		slog.Error("page action failed", "error", err)
		return "Something went wrong, try again."
	}
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, ok, errMsg string) {
	q := url.Values{}
	if ok != "" {
		q.Set("ok", ok)
	}
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func redirectHome(w http.ResponseWriter, r *http.Request, ok, errMsg string) {
	redirectWith(w, r, "/", ok, errMsg)
}

func redirectAdmin(w http.ResponseWriter, r *http.Request, ok, errMsg string) {
	redirectWith(w, r, "/admin", ok, errMsg)
}
