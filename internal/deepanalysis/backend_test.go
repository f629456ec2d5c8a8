package deepanalysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishaan812/farmer/internal/git"
)

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content, msg string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Alice", Email: "alice@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestFetchKeepsHealthyRepoWhenAnotherIsMissing(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "main.go", "package main\n", "init")
	hash := commitFile(t, repo, dir, "main.go", "package main\n\nfunc main() {}\n", "add main")

	missing := filepath.Join(t.TempDir(), "moved-away")
	commits := []git.Commit{
		{Hash: hash, RepoPath: dir},
		{Hash: "0123456789abcdef0123456789abcdef01234567", RepoPath: missing},
	}

	f := NewFetcher(git.NewLocalBackend(nil), nil, WithRetry(2, 0))
	got, err := f.Fetch(context.Background(), commits, git.DiffOptions{MaxFileSizeKB: 50, MaxFiles: 20})
	require.NoError(t, err)
	require.Contains(t, got, hash)
	assert.Equal(t, "main.go", got[hash][0].Path)
	assert.Len(t, got, 1)
}
