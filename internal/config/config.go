// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Unimus: Connection to the Unimus server (address, API key, HTTP limits)
//  2. Export: What to export (latest vs all backups) and where (filesystem vs git)
//  3. Git: Remote repository coordinates and credentials (only when export type is git)
//  4. Schedule: Export interval and one-shot mode
//  5. Server: Optional operational HTTP endpoint (health, metrics, run status)
//  6. Logging: Log level and output format
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Unimus.Address, cfg.Export.Dir, etc. are now populated
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines. Components receive it by parameter at construction time.
type Config struct {
	Unimus   UnimusConfig   `koanf:"unimus"`
	Export   ExportConfig   `koanf:"export"`
	Git      GitConfig      `koanf:"git"` // Only validated when Export.Type is "git"
	Schedule ScheduleConfig `koanf:"schedule"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UnimusConfig holds Unimus server connection settings.
//
// Environment Variables:
//   - unimus_server_address: Base URL of the Unimus server (e.g., https://unimus.example.com)
//   - unimus_api_key: API token from Unimus (Settings > API tokens)
//   - unimus_timeout: HTTP request timeout (default: 30s)
//   - unimus_page_size: Page size for paginated API requests (default: 50)
//   - unimus_requests_per_second: Client-side request pacing, 0 disables (default: 0)
type UnimusConfig struct {
	// Address is the base URL of the Unimus server, without the /api/v2 suffix.
	Address string `koanf:"address" validate:"required"`

	// APIKey is the Unimus API token sent as a Bearer credential.
	APIKey string `koanf:"api_key" validate:"required"`

	// Timeout bounds each HTTP request to the Unimus API.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`

	// PageSize is the number of items requested per API page.
	PageSize int `koanf:"page_size" validate:"gte=1,lte=1000"`

	// RequestsPerSecond paces API calls client-side. Zero means no pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
}

// BaseURL returns the server address without a trailing slash.
func (u UnimusConfig) BaseURL() string {
	return strings.TrimRight(u.Address, "/")
}

// Export mode values for ExportConfig.BackupType.
const (
	BackupTypeLatest = "latest"
	BackupTypeAll    = "all"
)

// Export destination values for ExportConfig.Type.
const (
	ExportTypeFs  = "fs"
	ExportTypeGit = "git"
)

// ExportConfig selects which backups are exported and where they go.
//
// Environment Variables:
//   - backup_type: "latest" exports only the newest backup per device,
//     "all" exports every backup Unimus retains
//   - export_type: "fs" writes to the local filesystem only,
//     "git" additionally commits and pushes the backup directory
//   - backup_dir: Root directory for exported backups (default: backups)
type ExportConfig struct {
	BackupType string `koanf:"backup_type" validate:"required,oneof=latest all"`
	Type       string `koanf:"type" validate:"required,oneof=fs git"`
	Dir        string `koanf:"dir" validate:"required"`
}

// Git protocol values for GitConfig.Protocol.
const (
	GitProtocolSSH   = "ssh"
	GitProtocolHTTP  = "http"
	GitProtocolHTTPS = "https"
)

// GitConfig holds remote repository settings for git export.
// Username, Email, Protocol, Address, RepoName and Branch are required when
// export_type=git. Password and Port are additionally required for the http
// and https protocols; ssh defaults to port 22.
//
// Environment Variables:
//   - git_username, git_password, git_email
//   - git_server_protocol: ssh, http or https
//   - git_server_address, git_port, git_repo_name, git_branch
//   - git_ssh_key_path: Private key for ssh pushes (default: ~/.ssh/id_rsa)
//   - git_known_hosts_file: known_hosts file for ssh host verification;
//     empty accepts any host key
//   - git_author_name: Commit author name (default: git_username)
type GitConfig struct {
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	Email      string `koanf:"email"`
	AuthorName string `koanf:"author_name"`
	Protocol   string `koanf:"protocol" validate:"omitempty,oneof=ssh http https"`
	Address    string `koanf:"address"`
	Port       int    `koanf:"port" validate:"gte=0,lte=65535"`
	RepoName   string `koanf:"repo_name"`
	Branch     string `koanf:"branch"`

	SSHKeyPath     string `koanf:"ssh_key_path"`
	KnownHostsFile string `koanf:"known_hosts_file"`
}

// RemoteURL builds the git remote URL from the configured parts.
// SSH remotes embed credentials in userinfo form and omit the default port.
// HTTP remotes always carry username, password and port.
func (g GitConfig) RemoteURL() string {
	repo := strings.TrimLeft(g.RepoName, "/")

	switch g.Protocol {
	case GitProtocolSSH:
		user := url.User(g.Username)
		if g.Password != "" {
			user = url.UserPassword(g.Username, g.Password)
		}
		host := g.Address
		if g.Port != 0 && g.Port != 22 {
			host = fmt.Sprintf("%s:%d", g.Address, g.Port)
		}
		u := url.URL{Scheme: "ssh", User: user, Host: host, Path: "/" + repo}
		return u.String()
	case GitProtocolHTTP, GitProtocolHTTPS:
		u := url.URL{
			Scheme: g.Protocol,
			User:   url.UserPassword(g.Username, g.Password),
			Host:   fmt.Sprintf("%s:%d", g.Address, g.Port),
			Path:   "/" + repo,
		}
		return u.String()
	default:
		return ""
	}
}

// RedactedRemoteURL returns the remote URL with the password replaced by xxxxx.
// Use this form in logs.
func (g GitConfig) RedactedRemoteURL() string {
	if g.Password == "" {
		return g.RemoteURL()
	}
	red := g
	red.Password = "xxxxx"
	return red.RemoteURL()
}

// Author returns the commit author name, falling back to the username.
func (g GitConfig) Author() string {
	if g.AuthorName != "" {
		return g.AuthorName
	}
	return g.Username
}

// ScheduleConfig controls how often the export pipeline runs.
//
// Environment Variables:
//   - RUN_INTERVAL: Delay between export runs. Bare integers are seconds
//     (RUN_INTERVAL=3600); Go duration strings also work (RUN_INTERVAL=1h).
//     Default: 3600 seconds.
//   - run_once: Run a single export and exit instead of looping.
type ScheduleConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gte=1s"`
	RunOnce  bool          `koanf:"run_once"`
}

// ServerConfig holds the operational HTTP endpoint settings.
// The endpoint serves liveness, Prometheus metrics and the result of the
// most recent export run. It is optional and disabled by default.
//
// Environment Variables:
//   - http_enabled: Enable the operational endpoint (default: false)
//   - http_host: Listen host (default: 0.0.0.0)
//   - http_port: Listen port (default: 8950)
//   - http_timeout: Request read/write timeout (default: 30s)
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - log_level: trace, debug, info, warn, error (default: info)
//   - log_format: json or console (default: json)
//   - log_caller: Include caller file:line in logs (default: false)
//   - log_file: Optional file that receives a copy of all log output
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
	File   string `koanf:"file"`
}

// Load reads configuration from environment variables and an optional config
// file. Configuration is loaded in the following order (later sources override
// earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
