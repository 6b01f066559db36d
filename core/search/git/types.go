// Package git provides the slice of Git repository introspection the
// pipeline needs: the current HEAD commit and the commit/file-change log
// over a time window, both grounded on go-git/v5 rather than shelling out to
// the git binary.
package git

import (
	"errors"
	"time"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrEmptyPath indicates an empty repository path was given to NewGitClient.
	ErrEmptyPath = errors.New("repository path cannot be empty")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("path is not a git repository")

	// ErrNoHead indicates the repository has no HEAD reference (no commits).
	ErrNoHead = errors.New("repository has no HEAD reference")
)

// =============================================================================
// CommitInfo
// =============================================================================

// CommitInfo represents metadata about a git commit.
type CommitInfo struct {
	// Hash is the full 40-character commit hash.
	Hash string

	// ShortHash is the abbreviated commit hash (7 characters).
	ShortHash string

	// Author is the name of the commit author.
	Author string

	// AuthorEmail is the email of the commit author.
	AuthorEmail string

	// AuthorTime is when the commit was authored.
	AuthorTime time.Time

	// Committer is the name of the person who committed.
	Committer string

	// CommitterEmail is the email of the committer.
	CommitterEmail string

	// CommitTime is when the commit was made.
	CommitTime time.Time

	// Message is the full commit message.
	Message string

	// Subject is the first line of the commit message.
	Subject string

	// ParentHashes contains the hashes of parent commits.
	ParentHashes []string

	// FilesChanged contains paths of files changed in this commit.
	FilesChanged []string
}

// IsMergeCommit returns true if the commit has multiple parents.
func (c *CommitInfo) IsMergeCommit() bool {
	return len(c.ParentHashes) > 1
}
