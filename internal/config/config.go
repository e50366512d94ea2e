// Package config reads command-line flags and LOSTFOUND_* environment
// variables. A .env file in the working directory is loaded first.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Commands.
const (
	CommandServe   = "serve"
	CommandArchive = "archive"
	CommandPasswd  = "passwd"
)

type serveCmd struct {
	Addr            string        `short:"a" long:"addr" env:"LOSTFOUND_ADDR" default:":8080" description:"Listen address"`
	UploadDir       string        `long:"uploads" env:"LOSTFOUND_UPLOADS" default:"uploads" description:"Directory for uploaded images"`
	ArchiveInterval time.Duration `long:"archive-interval" env:"LOSTFOUND_ARCHIVE_INTERVAL" default:"1h" description:"How often items older than a month are archived"`
	AdminUser       string        `short:"u" long:"user" env:"LOSTFOUND_ADMIN_USER" default:"admin" description:"Admin username created on first run"`
}

type archiveCmd struct{}

type passwdCmd struct {
	Args struct {
		Password string `positional-arg-name:"password" description:"New password (generated when omitted)"`
	} `positional-args:"yes"`
}

type rawCfg struct {
	DBPath  string `short:"d" long:"db" env:"LOSTFOUND_DB" default:"lostfound.sqlite3" description:"SQLite database path"`
	LogPath string `short:"l" long:"log" env:"LOSTFOUND_LOG" description:"Also write logs to this file"`
	Debug   bool   `long:"debug" env:"LOSTFOUND_DEBUG" description:"Enable debug logging"`

	Serve   serveCmd   `command:"serve" description:"Run the web server and the auto-archive scheduler (default)"`
	Archive archiveCmd `command:"archive" description:"Archive items older than one month and exit"`
	Passwd  passwdCmd  `command:"passwd" description:"Reset the admin password"`
}

// Config is the resolved configuration.
type Config struct {
	Command string

	DBPath  string
	LogPath string
	Debug   bool

	Addr            string
	UploadDir       string
	ArchiveInterval time.Duration
	AdminUser       string

	// Password is the new admin password for passwd; empty means generate one.
	Password string
}

// Load reads an optional .env file and then parses args. It returns nil, nil
// when help was requested.
func Load(args []string) (*Config, error) {
	// A missing .env is fine; variables already set in the environment win.
	_ = godotenv.Load()
	return Parse(args)
}

// Parse parses args (without the program name) together with the environment.
func Parse(args []string) (*Config, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.Name = "lostfound"
	parser.SubcommandsOptional = true

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Without a command the serve defaults still need applying.
	if parser.Active == nil {
		if _, err := flags.NewParser(&raw.Serve, flags.None).ParseArgs(nil); err != nil {
			return nil, fmt.Errorf("applying serve defaults: %w", err)
		}
	}

	cfg := &Config{
		Command:         CommandServe,
		DBPath:          raw.DBPath,
		LogPath:         raw.LogPath,
		Debug:           raw.Debug,
		Addr:            raw.Serve.Addr,
		UploadDir:       raw.Serve.UploadDir,
		ArchiveInterval: raw.Serve.ArchiveInterval,
		AdminUser:       raw.Serve.AdminUser,
		Password:        raw.Passwd.Args.Password,
	}
	if parser.Active != nil {
		cfg.Command = parser.Active.Name
	}

	if cfg.ArchiveInterval <= 0 {
		return nil, fmt.Errorf("archive interval must be positive, got %s", cfg.ArchiveInterval)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return cfg, nil
}
