package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo}
}

func (r *testRepo) write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, path)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0644))
}

func (r *testRepo) commit(msg, name, email string, when time.Time) string {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	hash, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: when},
	})
	require.NoError(r.t, err)
	return hash.String()
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.Local)
}

func TestAnalyzeRepositoryGroupsByDay(t *testing.T) {
	r := newTestRepo(t)
	r.write("old.txt", "old")
	r.commit("ancient work", "Alice", "alice@example.com", time.Date(2023, 6, 1, 10, 0, 0, 0, time.Local))
	r.write("a.txt", "a")
	r.commit("first", "Alice", "alice@example.com", at(10, 9, 5))
	r.write("b.txt", "b")
	r.commit("second\n\nbody", "Bob", "bob@example.com", at(10, 14, 30))
	r.write("c.txt", "c")
	r.commit("third", "Alice", "alice@example.com", at(11, 8, 0))

	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/widgets.git"},
	})
	require.NoError(t, err)

	b := NewLocalBackend(nil, WithClock(func() time.Time { return at(20, 12, 0) }))
	days, err := b.AnalyzeRepository(context.Background(), r.dir, nil)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2024-01-11", days[0].Date)
	assert.Equal(t, 1, days[0].TotalCommits)

	day := days[1]
	assert.Equal(t, "2024-01-10", day.Date)
	assert.Equal(t, 2, day.TotalCommits)
	assert.Equal(t, "second\n\nbody", day.Commits[0].Message)
	assert.Equal(t, "second", day.Commits[0].Subject())
	assert.Equal(t, "first", day.Commits[1].Message)
	assert.Equal(t, "9:05 AM", day.FirstCommitTime)
	assert.Equal(t, "2:30 PM", day.LastCommitTime)
	assert.Equal(t, []string{"b.txt"}, day.Commits[0].FilesChanged)
	assert.Equal(t, "git@github.com:acme/widgets.git", day.Commits[0].RemoteURL)

	abs, _ := filepath.Abs(r.dir)
	assert.Equal(t, abs, day.Commits[0].RepoPath)
}

func TestAnalyzeRepositoryAuthorFilter(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "a")
	r.commit("mine", "Alice Smith", "alice@example.com", at(10, 9, 0))
	r.write("b.txt", "b")
	r.commit("theirs", "Bob", "bob@corp.io", at(10, 10, 0))

	b := NewLocalBackend(nil, WithClock(func() time.Time { return at(20, 12, 0) }))

	days, err := b.AnalyzeRepository(context.Background(), r.dir, []string{"SMITH"})
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Len(t, days[0].Commits, 1)
	assert.Equal(t, "mine", days[0].Commits[0].Message)

	days, err = b.AnalyzeRepository(context.Background(), r.dir, []string{"corp.io"})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "theirs", days[0].Commits[0].Message)
}

func TestAnalyzeRepositoryReportsProgress(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "a")
	r.commit("first", "Alice", "alice@example.com", at(10, 9, 0))
	r.write("b.txt", "b")
	r.commit("second", "Alice", "alice@example.com", at(10, 10, 0))

	var mu sync.Mutex
	var seen []int
	b := NewLocalBackend(nil,
		WithClock(func() time.Time { return at(20, 12, 0) }),
		WithProgress(func(repoPath string, processed, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 2, total)
			assert.NotEmpty(t, repoPath)
			seen = append(seen, processed)
		}))
	_, err := b.AnalyzeRepository(context.Background(), r.dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestWalkCommitsSingleWorker(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "a")
	r.commit("first", "Alice", "alice@example.com", at(10, 9, 0))
	r.write("b.txt", "b")
	r.commit("second", "Alice", "alice@example.com", at(10, 10, 0))

	repo, err := OpenRepo(r.dir)
	require.NoError(t, err)
	commits, err := WalkCommits(context.Background(), repo, WalkOptions{Workers: 1})
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "second", commits[0].Message)
	assert.Equal(t, []string{"b.txt"}, commits[0].FilesChanged)
}

func TestAnalyzeRepositoryNotARepo(t *testing.T) {
	b := NewLocalBackend(nil)
	_, err := b.AnalyzeRepository(context.Background(), t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrRepoUnavailable)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}

func TestCommitDiffs(t *testing.T) {
	r := newTestRepo(t)
	r.write("main.go", "package main\n\nfunc main() {}\n")
	root := r.commit("init", "Alice", "alice@example.com", at(10, 9, 0))

	r.write("main.go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	r.write("yarn.lock", "lock")
	r.write("node_modules/pkg/index.js", "module.exports = 1\n")
	r.write("big.txt", strings.Repeat("x", 2048)+"\n")
	second := r.commit("update", "Alice", "alice@example.com", at(10, 10, 0))

	b := NewLocalBackend(nil)
	ctx := context.Background()

	diffs, err := b.CommitDiffs(ctx, r.dir, root, DiffOptions{MaxFileSizeKB: 1, MaxFiles: 20})
	require.NoError(t, err)
	assert.Empty(t, diffs)

	diffs, err = b.CommitDiffs(ctx, r.dir, second, DiffOptions{MaxFileSizeKB: 1, MaxFiles: 20})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "main.go", diffs[0].Path)
	assert.Equal(t, 3, diffs[0].Additions)
	assert.Equal(t, 1, diffs[0].Deletions)
	assert.Contains(t, diffs[0].Diff, "+\tprintln(\"hi\")\n")
	assert.Contains(t, diffs[0].Diff, "-func main() {}\n")
	assert.Contains(t, diffs[0].Diff, " package main\n")

	diffs, err = b.CommitDiffs(ctx, r.dir, second, DiffOptions{MaxFileSizeKB: 50, MaxFiles: 1})
	require.NoError(t, err)
	assert.Len(t, diffs, 1)
}

func TestIsIgnoredPath(t *testing.T) {
	tests := map[string]bool{
		"src/app.go":                false,
		"web/app.min.js":            true,
		"assets/Logo.PNG":           true,
		"go.sum":                    true,
		"Cargo.lock":                true,
		"node_modules/x/index.js":   true,
		"web/node_modules/x/y.js":   true,
		"rebuild/notes.md":          false,
		"services/api/vendor/a.go":  true,
		"docs/distribution/plan.md": false,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsIgnoredPath(path), path)
	}
}

func TestMatchesAuthor(t *testing.T) {
	assert.True(t, MatchesAuthor("Alice", "a@x.io", nil))
	assert.True(t, MatchesAuthor("Alice", "a@x.io", []string{"ALI"}))
	assert.True(t, MatchesAuthor("Alice", "a@x.io", []string{"nobody", "x.io"}))
	assert.False(t, MatchesAuthor("Alice", "a@x.io", []string{"bob"}))
	assert.False(t, MatchesAuthor("Alice", "a@x.io", []string{"  "}))
}

func TestNewWorkDay(t *testing.T) {
	commits := []Commit{
		{Hash: "a", Timestamp: at(10, 9, 0)},
		{Hash: "b", Timestamp: at(10, 17, 45)},
		{Hash: "c", Timestamp: at(10, 12, 0)},
	}
	day := NewWorkDay("2024-01-10", commits)

	assert.Equal(t, 3, day.TotalCommits)
	assert.Equal(t, []string{"b", "c", "a"}, []string{day.Commits[0].Hash, day.Commits[1].Hash, day.Commits[2].Hash})
	assert.Equal(t, "9:00 AM", day.FirstCommitTime)
	assert.Equal(t, "5:45 PM", day.LastCommitTime)
	assert.Equal(t, "a", commits[0].Hash, "input must not be reordered")

	empty := NewWorkDay("2024-01-10", nil)
	assert.Zero(t, empty.TotalCommits)
	assert.Empty(t, empty.FirstCommitTime)
}

func TestRepoUnavailableOnMissingRepo(t *testing.T) {
	b := NewLocalBackend(nil)
	_, err := b.CommitDiffs(context.Background(), filepath.Join(t.TempDir(), "missing"), "abc", DiffOptions{})
	assert.ErrorIs(t, err, ErrRepoUnavailable)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)
}
