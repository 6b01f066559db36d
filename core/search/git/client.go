package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// =============================================================================
// GitClient
// =============================================================================

// GitClient provides read-only operations on a git repository.
// It wraps go-git/v5 for repository access and provides thread-safe access.
type GitClient struct {
	repoPath string
	repo     *gogit.Repository
	mu       sync.RWMutex
	isRepo   bool
}

// NewGitClient creates a new GitClient for the given repository path.
// Returns a valid client even if path is not a git repo.
// Returns an error only if path is empty.
func NewGitClient(repoPath string) (*GitClient, error) {
	if repoPath == "" {
		return nil, ErrEmptyPath
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	client := &GitClient{
		repoPath: absPath,
		isRepo:   false,
	}

	client.initRepository(absPath)

	return client, nil
}

// initRepository attempts to open the git repository at the given path.
func (c *GitClient) initRepository(repoPath string) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return
	}

	c.repo = repo
	c.isRepo = true
}

// =============================================================================
// Repository State Methods
// =============================================================================

// RepoPath returns the repository path.
func (c *GitClient) RepoPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.repoPath
}

// IsGitRepo returns true if the path is a git repository.
func (c *GitClient) IsGitRepo() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.isRepo
}

// Close releases any resources held by the client.
// Safe to call multiple times.
func (c *GitClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repo = nil
	c.isRepo = false

	return nil
}

// =============================================================================
// GetHeadCommit
// =============================================================================

// GetHeadCommit returns the current HEAD commit hash, for meta.json's
// commit_hash field.
// Returns ErrNotGitRepo if not a git repository.
// Returns ErrNoHead if the repository has no commits.
func (c *GitClient) GetHeadCommit() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isRepo {
		return "", ErrNotGitRepo
	}

	ref, err := c.repo.Head()
	if err != nil {
		return "", wrapHeadError(err)
	}

	return ref.Hash().String(), nil
}

// wrapHeadError converts go-git HEAD errors to our error types.
func wrapHeadError(err error) error {
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return ErrNoHead
	}
	return err
}
