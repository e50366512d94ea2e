package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Command != CommandServe {
		t.Errorf("expected serve, got %q", cfg.Command)
	}
	if cfg.DBPath != "lostfound.sqlite3" {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.ArchiveInterval != time.Hour {
		t.Errorf("expected 1h interval, got %s", cfg.ArchiveInterval)
	}
	if cfg.AdminUser != "admin" || cfg.UploadDir != "uploads" {
		t.Errorf("unexpected serve defaults: %+v", cfg)
	}
}

func TestParseServeFlags(t *testing.T) {
	cfg, err := Parse([]string{"-d", "test.db", "--debug", "serve", "-a", "127.0.0.1:9000", "--archive-interval", "15m"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.DBPath != "test.db" || !cfg.Debug {
		t.Errorf("global flags not applied: %+v", cfg)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.ArchiveInterval != 15*time.Minute {
		t.Errorf("expected 15m, got %s", cfg.ArchiveInterval)
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("LOSTFOUND_DB", "/var/lib/lostfound.db")
	t.Setenv("LOSTFOUND_ARCHIVE_INTERVAL", "30m")

	cfg, err := Parse([]string{"serve"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DBPath != "/var/lib/lostfound.db" {
		t.Errorf("expected db path from env, got %q", cfg.DBPath)
	}
	if cfg.ArchiveInterval != 30*time.Minute {
		t.Errorf("expected 30m from env, got %s", cfg.ArchiveInterval)
	}
}

func TestParseCommands(t *testing.T) {
	cfg, err := Parse([]string{"archive"})
	if err != nil {
		t.Fatalf("Parse archive: %v", err)
	}
	if cfg.Command != CommandArchive {
		t.Errorf("expected archive, got %q", cfg.Command)
	}

	cfg, err = Parse([]string{"passwd", "s3cret!"})
	if err != nil {
		t.Fatalf("Parse passwd: %v", err)
	}
	if cfg.Command != CommandPasswd || cfg.Password != "s3cret!" {
		t.Errorf("unexpected passwd config: %+v", cfg)
	}
}

func TestParseRejectsBadInterval(t *testing.T) {
	if _, err := Parse([]string{"serve", "--archive-interval", "0s"}); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, err := Parse([]string{"serve", "--archive-interval", "soon"}); err == nil {
		t.Error("expected error for unparsable interval")
	}
}
