// Package config defines the process configuration and how it is loaded.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - Nested sections map to koanf paths: local.refid, remote.port, ...
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"time"
)

// Source selectors.
const (
	SourceAuto   = "auto"
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Source picks the backend: auto, local or remote. Auto tries the local
	// files first and falls back to the remote database.
	Source string `koanf:"source"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// HTTPAddr serves the read-only query API when non-empty. It may equal
	// MetricsAddr, in which case one listener serves both.
	HTTPAddr string `koanf:"http_addr"`

	// HistoryFile keeps the shell history between sessions.
	HistoryFile string `koanf:"history_file"`

	Local  Local  `koanf:"local"`
	Remote Remote `koanf:"remote"`
}

// Local configures the local event log backend.
type Local struct {
	// Refid selects whose records are read from the shared log.
	Refid      string `koanf:"refid"`
	RecordPath string `koanf:"record_path"`
	MusicPath  string `koanf:"music_path"`
}

// Remote configures the remote database backend.
type Remote struct {
	Address  string `koanf:"address"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Username is the player account whose scores are read.
	Username string `koanf:"username"`

	// GameVersion filters music rows by version.
	GameVersion int `koanf:"game_version"`

	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		Source:      SourceAuto,
		HistoryFile: ".sdvxrec_history",
		Local: Local{
			RecordPath: "savedata.db",
			MusicPath:  "music_db.xml",
		},
		Remote: Remote{
			Port:         3306,
			Database:     "bemani",
			User:         "root",
			GameVersion:  6,
			QueryTimeout: 30 * time.Second,
		},
	}
}

// LocalReady reports whether the local backend has what it needs.
func (c *Config) LocalReady() bool {
	return c.Local.Refid != ""
}

// RemoteReady reports whether the remote backend has what it needs.
func (c *Config) RemoteReady() bool {
	return c.Remote.Username != "" && c.Remote.Address != ""
}

// Validate checks the source selector against the backend settings.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceLocal:
		if !c.LocalReady() {
			return fmt.Errorf("%w: local source requires local.refid", ErrInvalidConfig)
		}
	case SourceRemote:
		if !c.RemoteReady() {
			return fmt.Errorf("%w: remote source requires remote.username and remote.address", ErrInvalidConfig)
		}
	case SourceAuto:
		if !c.LocalReady() && !c.RemoteReady() {
			return fmt.Errorf("%w: no backend configured: set local.refid or remote.username and remote.address", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source %q (want auto, local or remote)", ErrInvalidConfig, c.Source)
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		return fmt.Errorf("%w: remote.port %d out of range", ErrInvalidConfig, c.Remote.Port)
	}
	if c.Remote.GameVersion < 0 {
		return fmt.Errorf("%w: remote.game_version must not be negative", ErrInvalidConfig)
	}
	return nil
}
