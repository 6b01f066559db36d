package git

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommitsSince_NonRepoReturnsError(t *testing.T) {
	dir := t.TempDir()

	client, err := NewGitClient(dir)
	require.NoError(t, err)

	_, err = client.GetCommitsSince(time.Now())
	assert.ErrorIs(t, err, ErrNotGitRepo)
}

func TestGetCommitsSince_FiltersByTimeAndCollectsFilesChanged(t *testing.T) {
	dir := setupTestRepo(t)
	createAndCommit(t, dir, "a.txt", "one", "first")

	cutoff := time.Now().Add(-1 * time.Hour)
	createAndCommit(t, dir, "b.txt", "two", "second")

	client, err := NewGitClient(dir)
	require.NoError(t, err)

	commits, err := client.GetCommitsSince(cutoff)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	var allFiles []string
	for _, c := range commits {
		allFiles = append(allFiles, c.FilesChanged...)
	}
	assert.Contains(t, allFiles, "a.txt")
	assert.Contains(t, allFiles, "b.txt")
}

func TestGetCommitsSince_ExcludesCommitsBeforeCutoff(t *testing.T) {
	dir := setupTestRepo(t)
	createAndCommit(t, dir, "a.txt", "one", "first")

	cutoff := time.Now().Add(24 * time.Hour)

	client, err := NewGitClient(dir)
	require.NoError(t, err)

	commits, err := client.GetCommitsSince(cutoff)
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestIsMergeCommit(t *testing.T) {
	single := &CommitInfo{ParentHashes: []string{"a"}}
	merge := &CommitInfo{ParentHashes: []string{"a", "b"}}

	assert.False(t, single.IsMergeCommit())
	assert.True(t, merge.IsMergeCommit())
}
