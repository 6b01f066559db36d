package git

import (
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// =============================================================================
// GetCommitsSince
// =============================================================================

// GetCommitsSince returns every commit reachable from HEAD whose author time
// is at or after since, each with its changed-file list populated, for
// Phase 11's change-coupling analysis. Results are ordered newest to oldest.
// Returns ErrNotGitRepo if not a git repository.
func (c *GitClient) GetCommitsSince(since time.Time) ([]*CommitInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isRepo {
		return nil, ErrNotGitRepo
	}

	iter, err := c.repo.Log(&gogit.LogOptions{Since: &since})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []*CommitInfo
	err = iter.ForEach(func(commit *object.Commit) error {
		commits = append(commits, convertCommitToInfo(commit))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return commits, nil
}

// convertCommitToInfo converts a go-git Commit to our CommitInfo type.
func convertCommitToInfo(commit *object.Commit) *CommitInfo {
	return &CommitInfo{
		Hash:           commit.Hash.String(),
		ShortHash:      commit.Hash.String()[:7],
		Author:         commit.Author.Name,
		AuthorEmail:    commit.Author.Email,
		AuthorTime:     commit.Author.When,
		Committer:      commit.Committer.Name,
		CommitterEmail: commit.Committer.Email,
		CommitTime:     commit.Committer.When,
		Message:        commit.Message,
		Subject:        extractSubject(commit.Message),
		ParentHashes:   extractParentHashes(commit),
		FilesChanged:   extractFilesChanged(commit),
	}
}

// extractSubject returns the first line of the commit message.
func extractSubject(message string) string {
	for i, r := range message {
		if r == '\n' {
			return message[:i]
		}
	}
	return message
}

// extractParentHashes returns string hashes of parent commits.
func extractParentHashes(commit *object.Commit) []string {
	hashes := make([]string, len(commit.ParentHashes))
	for i, hash := range commit.ParentHashes {
		hashes[i] = hash.String()
	}
	return hashes
}

// extractFilesChanged returns the paths modified in commit, computed from
// its diff against its parent (or against an empty tree for the root
// commit).
func extractFilesChanged(commit *object.Commit) []string {
	stats, err := commit.Stats()
	if err != nil {
		return nil
	}

	files := make([]string, len(stats))
	for i, stat := range stats {
		files[i] = stat.Name
	}
	return files
}
