// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/unimus-exporter/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Field-level constraints run through struct tags first, then the cross-field
// rules that tags cannot express (the git group, protocol-dependent password).
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateUnimus(); err != nil {
		return err
	}

	return c.validateGit()
}

// validateUnimus validates the Unimus server address beyond the required tag.
func (c *Config) validateUnimus() error {
	if err := validateHTTPURL(c.Unimus.Address, "unimus_server_address"); err != nil {
		return fmt.Errorf("unimus_server_address is invalid: %w", err)
	}
	return nil
}

// validateGit validates git settings (only when export type is git).
// A password is only required for http/https remotes; ssh authenticates
// with the configured key instead.
func (c *Config) validateGit() error {
	if c.Export.Type != ExportTypeGit {
		return nil
	}

	required := []struct {
		value string
		name  string
	}{
		{c.Git.Username, "git_username"},
		{c.Git.Email, "git_email"},
		{c.Git.Protocol, "git_server_protocol"},
		{c.Git.Address, "git_server_address"},
		{c.Git.RepoName, "git_repo_name"},
		{c.Git.Branch, "git_branch"},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required when export_type=git", r.name)
		}
	}

	switch c.Git.Protocol {
	case GitProtocolHTTP, GitProtocolHTTPS:
		if c.Git.Password == "" {
			return fmt.Errorf("git_password is required for the %s protocol", c.Git.Protocol)
		}
		if c.Git.Port == 0 {
			return fmt.Errorf("git_port is required for the %s protocol", c.Git.Protocol)
		}
	}

	return nil
}

// validateHTTPURL validates that a URL is properly formatted for HTTP/HTTPS services.
// Validates: scheme (http/https), host present, no query params. A path prefix
// is allowed for servers behind a reverse proxy.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
