// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

// Package gitsync versions the export directory in git and pushes it to a
// configured remote after each export run.
//
// # Overview
//
// The syncer treats the export root as a git worktree. Each Sync call:
//
//  1. Opens the repository, initializing it with the configured branch and
//     an "origin" remote on first use
//  2. Stages every change, including deletions from latest-mode pruning
//  3. Commits with a timestamped message when the tree is dirty
//  4. Pushes the current branch to origin
//
// A clean tree is a no-op: no commit is created and nothing is pushed, so
// repeated runs against an unchanged Unimus inventory leave the remote
// untouched.
//
// # Implementation
//
// All git operations use go-git, so no git binary is required in the
// container. Pushes authenticate per the configured protocol:
//
//   - ssh: private key from git_ssh_key_path (default ~/.ssh/id_rsa), host
//     verification against git_known_hosts_file when set. Without a usable
//     key the configured git_password is used for ssh password auth.
//   - http/https: basic auth from git_username and git_password.
//
// When no known_hosts file is configured, any host key is accepted, so set
// git_known_hosts_file wherever the remote's identity matters.
//
// # Error Handling
//
// Failures are returned as *SyncError identifying the failed operation
// (open, init, stage, commit, push, auth). The export pipeline records the
// error on the run result but keeps the filesystem export; a bad remote
// never costs backup data.
//
// # See Also
//
//   - internal/export: the pipeline that triggers syncs
//   - internal/config: GitConfig and remote URL construction
package gitsync
