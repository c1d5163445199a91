// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/unimus-exporter/config.yaml",
	"/etc/unimus-exporter/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Unimus: UnimusConfig{
			Address:           "",
			APIKey:            "",
			Timeout:           30 * time.Second,
			PageSize:          50,
			RequestsPerSecond: 0, // Unlimited
		},
		Export: ExportConfig{
			BackupType: "",
			Type:       "",
			Dir:        "backups",
		},
		Git: GitConfig{
			Username:       "",
			Password:       "",
			Email:          "",
			AuthorName:     "", // Falls back to Username
			Protocol:       "",
			Address:        "",
			Port:           0,
			RepoName:       "",
			Branch:         "",
			SSHKeyPath:     "",
			KnownHostsFile: "",
		},
		Schedule: ScheduleConfig{
			Interval: 3600 * time.Second,
			RunOnce:  false,
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "0.0.0.0",
			Port:    8950,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
			File:   "",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
//   - Flat environment variable names (UNIMUS_SERVER_ADDRESS, GIT_USERNAME)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// unimus_server_address -> unimus.address
	// RUN_INTERVAL -> schedule.interval
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process duration fields given as bare integer seconds
	if err := processDurationFields(k); err != nil {
		return nil, fmt.Errorf("failed to process duration fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// durationConfigPaths defines which config paths accept bare integer seconds
// in addition to Go duration strings. RUN_INTERVAL=3600 must keep meaning one
// hour rather than failing to parse.
var durationConfigPaths = []string{
	"schedule.interval",
	"unimus.timeout",
	"server.timeout",
}

// processDurationFields rewrites bare numeric values on known duration paths
// to second-suffixed duration strings so unmarshaling accepts them.
func processDurationFields(k *koanf.Koanf) error {
	for _, path := range durationConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		var secs int64
		switch v := val.(type) {
		case int:
			secs = int64(v)
		case int64:
			secs = v
		case float64:
			secs = int64(v)
		case time.Duration:
			continue
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				continue // Not a bare integer; let the duration parser handle it
			}
			secs = n
		default:
			continue
		}

		if err := k.Set(path, fmt.Sprintf("%ds", secs)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
// This is useful for testing with custom configuration sources.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// envTransformFunc transforms environment variable names to koanf config paths.
// It handles the mapping from flat environment variable names to the nested
// configuration structure.
//
// Examples:
//   - unimus_server_address -> unimus.address
//   - backup_type -> export.backup_type
//   - git_server_protocol -> git.protocol
//   - RUN_INTERVAL -> schedule.interval
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Unimus connection
		"unimus_server_address":      "unimus.address",
		"unimus_api_key":             "unimus.api_key",
		"unimus_timeout":             "unimus.timeout",
		"unimus_page_size":           "unimus.page_size",
		"unimus_requests_per_second": "unimus.requests_per_second",

		// Export selection
		"backup_type": "export.backup_type",
		"export_type": "export.type",
		"backup_dir":  "export.dir",

		// Git remote
		"git_username":         "git.username",
		"git_password":         "git.password",
		"git_email":            "git.email",
		"git_author_name":      "git.author_name",
		"git_server_protocol":  "git.protocol",
		"git_server_address":   "git.address",
		"git_port":             "git.port",
		"git_repo_name":        "git.repo_name",
		"git_branch":           "git.branch",
		"git_ssh_key_path":     "git.ssh_key_path",
		"git_known_hosts_file": "git.known_hosts_file",

		// Schedule
		"run_interval": "schedule.interval",
		"run_once":     "schedule.run_once",

		// Operational HTTP endpoint
		"http_enabled": "server.enabled",
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
		"log_file":   "logging.file",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
