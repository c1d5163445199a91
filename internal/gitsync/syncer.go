// Unimus Exporter - Device Configuration Backup Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/unimus-exporter

package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	cryptossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/tomtom215/unimus-exporter/internal/config"
	"github.com/tomtom215/unimus-exporter/internal/logging"
	"github.com/tomtom215/unimus-exporter/internal/metrics"
)

// SyncError reports a failed git operation. Op identifies the stage:
// open, init, stage, commit, push or auth.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("git %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Syncer commits and pushes the export directory to a remote repository.
// It satisfies export.GitSyncer.
type Syncer struct {
	root        string
	remoteURL   string
	redactedURL string
	branch      string
	author      string
	email       string
	auth        transport.AuthMethod
}

// NewSyncer builds a Syncer from the loaded configuration. Authentication
// material is resolved eagerly so a missing ssh key or known_hosts file
// fails at startup, not halfway through the first export.
func NewSyncer(cfg *config.Config) (*Syncer, error) {
	auth, err := buildAuth(cfg.Git)
	if err != nil {
		return nil, err
	}

	return &Syncer{
		root:        cfg.Export.Dir,
		remoteURL:   cfg.Git.RemoteURL(),
		redactedURL: cfg.Git.RedactedRemoteURL(),
		branch:      cfg.Git.Branch,
		author:      cfg.Git.Author(),
		email:       cfg.Git.Email,
		auth:        auth,
	}, nil
}

// Sync stages, commits and pushes pending changes in the export directory.
// It returns the number of changed files committed; 0 means the tree was
// clean and nothing was pushed.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	start := time.Now()
	files, err := s.sync(ctx)
	metrics.RecordGitSync(time.Since(start), files, err)
	return files, err
}

func (s *Syncer) sync(ctx context.Context) (int, error) {
	repo, err := s.openOrInit()
	if err != nil {
		return 0, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return 0, &SyncError{Op: "open", Err: err}
	}

	// Stage everything, including deletions from latest-mode pruning
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return 0, &SyncError{Op: "stage", Err: err}
	}

	status, err := wt.Status()
	if err != nil {
		return 0, &SyncError{Op: "stage", Err: err}
	}
	if status.IsClean() {
		logging.Debug().
			Str("dir", s.root).
			Msg("Git tree clean, skipping commit")
		return 0, nil
	}

	changed := 0
	for _, fileStatus := range status {
		if fileStatus.Staging != git.Unmodified && fileStatus.Staging != git.Untracked {
			changed++
		}
	}

	when := time.Now().UTC()
	message := fmt.Sprintf("Unimus backup export %s", when.Format("2006-01-02 15:04:05"))
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.author,
			Email: s.email,
			When:  when,
		},
	})
	if err != nil {
		return 0, &SyncError{Op: "commit", Err: err}
	}

	logging.Debug().
		Str("commit", hash.String()).
		Int("files", changed).
		Msg("Committed backup changes")

	// Push whatever branch HEAD is on, matching plain `git push`. On a
	// repository this syncer initialized that is the configured branch.
	head, err := repo.Head()
	if err != nil {
		return 0, &SyncError{Op: "push", Err: err}
	}

	refspec := gitcfg.RefSpec(fmt.Sprintf("%s:%s", head.Name(), head.Name()))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitcfg.RefSpec{refspec},
		Auth:       s.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return 0, &SyncError{Op: "push", Err: err}
	}

	logging.Info().
		Str("remote", s.redactedURL).
		Str("branch", head.Name().Short()).
		Int("files", changed).
		Msg("Pushed backups to remote")

	return changed, nil
}

// openOrInit opens the repository at the export root, initializing it with
// the configured branch and origin remote on first use.
func (s *Syncer) openOrInit() (*git.Repository, error) {
	repo, err := git.PlainOpen(s.root)
	if err == nil {
		return repo, s.ensureRemote(repo)
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, &SyncError{Op: "open", Err: err}
	}

	repo, err = git.PlainInitWithOptions(s.root, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(s.branch),
		},
	})
	if err != nil {
		return nil, &SyncError{Op: "init", Err: err}
	}

	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{s.remoteURL},
	}); err != nil {
		return nil, &SyncError{Op: "init", Err: err}
	}

	logging.Info().
		Str("dir", s.root).
		Str("remote", s.redactedURL).
		Str("branch", s.branch).
		Msg("Initialized export git repository")

	return repo, nil
}

// ensureRemote keeps origin pointed at the configured URL. A redeploy with
// changed git settings must not keep pushing to the old remote through a
// persistent export volume.
func (s *Syncer) ensureRemote(repo *git.Repository) error {
	remote, err := repo.Remote(git.DefaultRemoteName)
	if errors.Is(err, git.ErrRemoteNotFound) {
		if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{
			Name: git.DefaultRemoteName,
			URLs: []string{s.remoteURL},
		}); err != nil {
			return &SyncError{Op: "open", Err: err}
		}
		return nil
	}
	if err != nil {
		return &SyncError{Op: "open", Err: err}
	}

	urls := remote.Config().URLs
	if len(urls) == 1 && urls[0] == s.remoteURL {
		return nil
	}

	logging.Warn().
		Str("remote", s.redactedURL).
		Msg("Remote URL changed, rewiring origin")

	if err := repo.DeleteRemote(git.DefaultRemoteName); err != nil {
		return &SyncError{Op: "open", Err: err}
	}
	if _, err := repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{s.remoteURL},
	}); err != nil {
		return &SyncError{Op: "open", Err: err}
	}

	return nil
}

// buildAuth resolves the push credential for the configured protocol.
func buildAuth(g config.GitConfig) (transport.AuthMethod, error) {
	switch g.Protocol {
	case config.GitProtocolHTTP, config.GitProtocolHTTPS:
		return &githttp.BasicAuth{Username: g.Username, Password: g.Password}, nil
	case config.GitProtocolSSH:
		return buildSSHAuth(g)
	default:
		return nil, &SyncError{Op: "auth", Err: fmt.Errorf("unsupported protocol %q", g.Protocol)}
	}
}

// buildSSHAuth prefers key auth and falls back to password auth when no
// usable key file exists.
func buildSSHAuth(g config.GitConfig) (transport.AuthMethod, error) {
	callback, err := hostKeyCallback(g.KnownHostsFile)
	if err != nil {
		return nil, &SyncError{Op: "auth", Err: err}
	}

	keyPath := g.SSHKeyPath
	if keyPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
	}

	if keyPath != "" {
		if _, err := os.Stat(keyPath); err == nil {
			keys, err := gitssh.NewPublicKeysFromFile(g.Username, keyPath, "")
			if err != nil {
				return nil, &SyncError{Op: "auth", Err: fmt.Errorf("read ssh key %s: %w", keyPath, err)}
			}
			keys.HostKeyCallback = callback
			return keys, nil
		}
	}

	if g.Password == "" {
		return nil, &SyncError{Op: "auth", Err: fmt.Errorf("no ssh key at %s and no git_password set", keyPath)}
	}

	password := &gitssh.Password{User: g.Username, Password: g.Password}
	password.HostKeyCallback = callback
	return password, nil
}

// hostKeyCallback verifies hosts against the configured known_hosts file.
// Without one, any host key is accepted.
func hostKeyCallback(file string) (cryptossh.HostKeyCallback, error) {
	if file == "" {
		return cryptossh.InsecureIgnoreHostKey(), nil //nolint:gosec // Accepting unknown hosts is the documented behavior when git_known_hosts_file is unset
	}
	return knownhosts.New(file)
}
