package deepanalysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishaan812/farmer/internal/git"
)

type call struct {
	repo, hash string
	opts       git.DiffOptions
}

// fakeSource fails each hash failures[hash] times (negative: always) before returning diffs[hash].
type fakeSource struct {
	mu       sync.Mutex
	calls    []call
	failures map[string]int
	diffs    map[string][]git.FileDiff
	err      error
}

func (f *fakeSource) CommitDiffs(_ context.Context, repoPath, hash string, opts git.DiffOptions) ([]git.FileDiff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{repoPath, hash, opts})
	if n, ok := f.failures[hash]; ok && n != 0 {
		f.failures[hash] = n - 1
		if f.err != nil {
			return nil, f.err
		}
		return nil, errors.New("transient")
	}
	return f.diffs[hash], nil
}

func (f *fakeSource) callsFor(hash string) int {
	n := 0
	for _, c := range f.calls {
		if c.hash == hash {
			n++
		}
	}
	return n
}

func newTestFetcher(src DiffSource) *Fetcher {
	return NewFetcher(src, nil, WithRetry(2, 0))
}

func TestFetchSkipsCommitThatAlwaysFails(t *testing.T) {
	src := &fakeSource{
		failures: map[string]int{"bad": -1},
		diffs:    map[string][]git.FileDiff{"good": {{Path: "a.go", Diff: "+x"}}},
	}
	commits := []git.Commit{{Hash: "bad", RepoPath: "/r"}, {Hash: "good", RepoPath: "/r"}}

	got, err := newTestFetcher(src).Fetch(context.Background(), commits, git.DiffOptions{MaxFileSizeKB: 50, MaxFiles: 20})
	require.NoError(t, err)
	assert.NotContains(t, got, "bad")
	assert.Contains(t, got, "good")
	assert.Equal(t, 3, src.callsFor("bad"))
	assert.Equal(t, git.DiffOptions{MaxFileSizeKB: 50, MaxFiles: 20}, src.calls[0].opts)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	src := &fakeSource{
		failures: map[string]int{"flaky": 1},
		diffs:    map[string][]git.FileDiff{"flaky": {{Path: "a.go"}}},
	}
	got, err := newTestFetcher(src).Fetch(context.Background(), []git.Commit{{Hash: "flaky", RepoPath: "/r"}}, git.DiffOptions{})
	require.NoError(t, err)
	assert.Len(t, got["flaky"], 1)
	assert.Equal(t, 2, src.callsFor("flaky"))
}

func TestFetchOmitsEmptyDiffs(t *testing.T) {
	src := &fakeSource{diffs: map[string][]git.FileDiff{"root": {}}}
	got, err := newTestFetcher(src).Fetch(context.Background(), []git.Commit{{Hash: "root", RepoPath: "/r"}}, git.DiffOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchPropagatesBackendUnavailable(t *testing.T) {
	src := &fakeSource{
		failures: map[string]int{"a": -1},
		err:      fmt.Errorf("%w: no such repo", git.ErrBackendUnavailable),
	}
	_, err := newTestFetcher(src).Fetch(context.Background(), []git.Commit{{Hash: "a", RepoPath: "/r"}}, git.DiffOptions{})
	assert.ErrorIs(t, err, git.ErrBackendUnavailable)
	assert.Equal(t, 3, src.callsFor("a"))
}

func TestFetchSkipsUnavailableRepository(t *testing.T) {
	src := &fakeSource{
		failures: map[string]int{"gone1": -1, "gone2": -1},
		diffs:    map[string][]git.FileDiff{"ok": {{Path: "a.go", Diff: "+x"}}},
		err:      fmt.Errorf("%w: moved away", git.ErrRepoUnavailable),
	}
	commits := []git.Commit{
		{Hash: "ok", RepoPath: "/healthy"},
		{Hash: "gone1", RepoPath: "/moved"},
		{Hash: "gone2", RepoPath: "/moved"},
	}

	got, err := newTestFetcher(src).Fetch(context.Background(), commits, git.DiffOptions{})
	require.NoError(t, err)
	assert.Contains(t, got, "ok")
	assert.NotContains(t, got, "gone1")
	assert.Equal(t, 3, src.callsFor("gone1"))
	assert.Zero(t, src.callsFor("gone2"), "rest of an unavailable repository is skipped")
}

func TestFetchGroupsByRepository(t *testing.T) {
	src := &fakeSource{}
	commits := []git.Commit{
		{Hash: "1", RepoPath: "/a"},
		{Hash: "2", RepoPath: "/b"},
		{Hash: "3", RepoPath: "/a"},
	}
	_, err := newTestFetcher(src).Fetch(context.Background(), commits, git.DiffOptions{})
	require.NoError(t, err)

	var order []string
	for _, c := range src.calls {
		order = append(order, c.repo+"@"+c.hash)
	}
	assert.Equal(t, []string{"/a@1", "/a@3", "/b@2"}, order)
}

func TestFetchCancelled(t *testing.T) {
	src := &fakeSource{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestFetcher(src).Fetch(ctx, []git.Commit{{Hash: "a", RepoPath: "/r"}}, git.DiffOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.calls)
}

func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "+line %d\n", i)
	}
	return b.String()
}

func TestFormatTruncatesLongDiffs(t *testing.T) {
	commits := []git.Commit{{Hash: "h1", Message: "Add parser"}}
	diffs := map[string][]git.FileDiff{
		"h1": {{Path: "parser.go", Additions: 20, Diff: numberedLines(20)}},
	}

	out := Format(Subjects(commits), commits, diffs)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "1. Add parser", lines[0])
	assert.Equal(t, "   📁 parser.go (+20/-0)", lines[1])

	diffLines := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "      +line") {
			diffLines++
		}
	}
	assert.Equal(t, 15, diffLines)
	assert.Equal(t, "      +line 15", lines[16])
	assert.Equal(t, "      ... (truncated)", lines[17])
	assert.Len(t, lines, 18)
}

func TestFormatLimitsFiles(t *testing.T) {
	var files []git.FileDiff
	for i := 0; i < 6; i++ {
		files = append(files, git.FileDiff{Path: fmt.Sprintf("f%d.go", i), Diff: "+x\n"})
	}
	commits := []git.Commit{{Hash: "h1"}}
	out := Format([]string{"Touch files"}, commits, map[string][]git.FileDiff{"h1": files})

	assert.Equal(t, 5, strings.Count(out, "📁"))
	assert.NotContains(t, out, "f5.go")
	assert.True(t, strings.HasSuffix(out, "   ... and 1 more files changed"))
}

func TestFormatWithoutDiffs(t *testing.T) {
	out := Format([]string{"Fix login", "Add export"}, nil, nil)
	assert.Equal(t, "1. Fix login\n2. Add export", out)

	short := Format([]string{"Tiny"}, []git.Commit{{Hash: "h"}}, map[string][]git.FileDiff{
		"h": {{Path: "a.go", Additions: 1, Deletions: 1, Diff: "-a\n+b\n"}},
	})
	assert.Equal(t, "1. Tiny\n   📁 a.go (+1/-1)\n      -a\n      +b", short)
}
