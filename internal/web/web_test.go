package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/scheduler"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/uploads"
)

func setupTestSite(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	database := db.NewTestDB(t)

	up, err := uploads.New(t.TempDir())
	if err != nil {
		t.Fatalf("uploads.New: %v", err)
	}
	engine := lifecycle.NewEngine(database, lifecycle.WithImageRemover(up))

	s := &Server{
		DB:        database,
		Engine:    engine,
		Scheduler: scheduler.New(engine, time.Hour),
		Uploads:   up,
		JWTSecret: "test-secret",
	}
	router, err := NewRouter(s)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	hash, _ := auth.HashPassword("password")
	if _, err := store.CreateAdmin(context.Background(), database, "admin", hash); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return server, s
}

// newClient returns a client that keeps cookies and does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, u string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	resp.Body.Close()
	return resp
}

func login(t *testing.T, c *http.Client, base string) {
	t.Helper()
	resp := postForm(t, c, base+"/admin/login", url.Values{"username": {"admin"}, "password": {"password"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin" {
		t.Fatalf("login: expected redirect to /admin, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func body(t *testing.T, c *http.Client, u string) (int, string) {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestStudentPageListsItems(t *testing.T) {
	server, s := setupTestSite(t)
	ctx := context.Background()

	if _, err := s.Engine.CreateItem(ctx, model.NewItem{
		Description: "Green umbrella", FoundLocation: "Gym", CollectionLocation: "Reception",
	}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	status, html := body(t, newClient(t), server.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(html, "Green umbrella") {
		t.Error("expected item description on the student page")
	}
}

func TestReportSubmit(t *testing.T) {
	server, s := setupTestSite(t)
	c := newClient(t)

	var buf strings.Builder
	buf.WriteString("--b\r\nContent-Disposition: form-data; name=\"description\"\r\n\r\nKeys\r\n")
	buf.WriteString("--b\r\nContent-Disposition: form-data; name=\"found_location\"\r\n\r\nHall\r\n")
	buf.WriteString("--b\r\nContent-Disposition: form-data; name=\"collection_location\"\r\n\r\nDesk\r\n")
	buf.WriteString("--b--\r\n")

	resp, err := c.Post(server.URL+"/report", "multipart/form-data; boundary=b", strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("POST /report: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "ok=") {
		t.Errorf("expected success redirect, got %q", loc)
	}

	items, _ := store.ListActiveItems(context.Background(), s.DB)
	if len(items) != 1 || items[0].Description != "Keys" {
		t.Errorf("expected reported item, got %+v", items)
	}
}

func TestReportSubmitValidation(t *testing.T) {
	server, _ := setupTestSite(t)
	c := newClient(t)

	body := "--b\r\nContent-Disposition: form-data; name=\"description\"\r\n\r\nKeys\r\n--b--\r\n"
	resp, err := c.Post(server.URL+"/report", "multipart/form-data; boundary=b", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /report: %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "error=") {
		t.Errorf("expected error redirect, got %q", loc)
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	server, _ := setupTestSite(t)

	resp, err := newClient(t).Get(server.URL + "/admin")
	if err != nil {
		t.Fatalf("GET /admin: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/login" {
		t.Errorf("expected redirect to login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestAdminActions(t *testing.T) {
	server, s := setupTestSite(t)
	ctx := context.Background()
	c := newClient(t)
	login(t, c, server.URL)

	item, err := s.Engine.CreateItem(ctx, model.NewItem{
		Description: "Laptop charger", FoundLocation: "Lab 3", CollectionLocation: "IT office",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	status, html := body(t, c, server.URL+"/admin")
	if status != http.StatusOK || !strings.Contains(html, "Laptop charger") {
		t.Fatalf("expected dashboard with item, got %d", status)
	}

	postForm(t, c, server.URL+"/admin/items/"+itoa(item.ID)+"/collect", url.Values{"collected_by": {"Marko"}})
	got, _ := store.GetItem(ctx, s.DB, item.ID)
	if !got.IsCollected || got.CollectedBy != "Marko" {
		t.Errorf("expected item collected by Marko, got %+v", got)
	}

	postForm(t, c, server.URL+"/admin/clear-history", nil)
	got, _ = store.GetItem(ctx, s.DB, item.ID)
	if got.IsCollected {
		t.Error("expected item back in the active list")
	}

	postForm(t, c, server.URL+"/admin/archive", nil)
	if s.Scheduler.Stats().Runs != 1 {
		t.Error("expected the archive button to run one sweep")
	}

	postForm(t, c, server.URL+"/admin/items/"+itoa(item.ID)+"/delete", nil)
	if got, _ := store.GetItem(ctx, s.DB, item.ID); got != nil {
		t.Error("expected item deleted")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	server, _ := setupTestSite(t)
	c := newClient(t)
	login(t, c, server.URL)

	u, _ := url.Parse(server.URL)
	token := ""
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == cookieName {
			token = ck.Value
		}
	}

	postForm(t, c, server.URL+"/admin/logout", nil)

	// Replay the old token directly.
	req, _ := http.NewRequest("GET", server.URL+"/admin", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	resp, err := newClient(t).Do(req)
	if err != nil {
		t.Fatalf("GET /admin: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected revoked session to redirect, got %d", resp.StatusCode)
	}
}

func TestPasswordSubmit(t *testing.T) {
	server, s := setupTestSite(t)
	c := newClient(t)
	login(t, c, server.URL)

	resp := postForm(t, c, server.URL+"/admin/password", url.Values{
		"current_password": {"password"},
		"new_password":     {"abc"},
		"confirm_password": {"abc"},
	})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "error=") {
		t.Errorf("expected error for short password, got %q", loc)
	}

	resp = postForm(t, c, server.URL+"/admin/password", url.Values{
		"current_password": {"password"},
		"new_password":     {"newsecret"},
		"confirm_password": {"newsecret"},
	})
	if loc := resp.Header.Get("Location"); !strings.Contains(loc, "ok=") {
		t.Errorf("expected success, got %q", loc)
	}

	if _, _, err := auth.Login(context.Background(), s.DB, s.JWTSecret, "admin", "newsecret"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
