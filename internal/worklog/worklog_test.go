package worklog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ishaan812/farmer/internal/config"
	"github.com/ishaan812/farmer/internal/git"
)

type analyzeCall struct {
	repo    string
	authors []string
}

type fakeBackend struct {
	days  map[string][]git.WorkDay
	fail  map[string]error
	calls []analyzeCall
}

func (f *fakeBackend) AnalyzeRepository(_ context.Context, repoPath string, authors []string) ([]git.WorkDay, error) {
	f.calls = append(f.calls, analyzeCall{repoPath, authors})
	if err := f.fail[repoPath]; err != nil {
		return nil, err
	}
	return f.days[repoPath], nil
}

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.Local)
}

func commit(hash string, ts time.Time) git.Commit {
	return git.Commit{Hash: hash, Message: "msg " + hash, Timestamp: ts}
}

func twoRepoBackend() *fakeBackend {
	return &fakeBackend{days: map[string][]git.WorkDay{
		"/src/repo-a": {git.NewWorkDay("2024-01-10", []git.Commit{commit("a1", at(10, 9))})},
		"/src/repo-b": {
			git.NewWorkDay("2024-01-11", []git.Commit{commit("b2", at(11, 8))}),
			git.NewWorkDay("2024-01-10", []git.Commit{commit("b1", at(10, 14))}),
		},
	}}
}

func TestAggregateMergesRepositories(t *testing.T) {
	agg := NewAggregator(twoRepoBackend(), nil)
	res, err := agg.Aggregate(context.Background(), Options{Repos: []string{"/src/repo-a", "/src/repo-b"}})
	require.NoError(t, err)
	require.Len(t, res.Days, 2)

	assert.Equal(t, "2024-01-11", res.Days[0].Date)
	day := res.Days[1]
	assert.Equal(t, "2024-01-10", day.Date)
	assert.Equal(t, 2, day.TotalCommits)
	assert.Equal(t, "9:00 AM", day.FirstCommitTime)
	assert.Equal(t, "2:00 PM", day.LastCommitTime)
	assert.Equal(t, "b1", day.Commits[0].Hash)
	assert.Equal(t, "/src/repo-b", day.Commits[0].RepoPath)
	assert.Equal(t, "repo-b", day.Commits[0].RepoName)
	assert.Equal(t, "a1", day.Commits[1].Hash)
	assert.Equal(t, "repo-a", day.Commits[1].RepoName)

	assert.Empty(t, agg.CurrentRepo())
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	a, err := NewAggregator(twoRepoBackend(), nil).Aggregate(context.Background(), Options{Repos: []string{"/src/repo-a", "/src/repo-b"}})
	require.NoError(t, err)
	b, err := NewAggregator(twoRepoBackend(), nil).Aggregate(context.Background(), Options{Repos: []string{"/src/repo-b", "/src/repo-a"}})
	require.NoError(t, err)
	assert.Equal(t, a.Days, b.Days)
}

func TestAggregateEmptyAuthorListDoesNotFilter(t *testing.T) {
	filtered := twoRepoBackend()
	unfiltered := twoRepoBackend()
	repos := []string{"/src/repo-a"}

	r1, err := NewAggregator(filtered, nil).Aggregate(context.Background(), Options{Repos: repos, FilterByAuthors: true, Authors: []string{}})
	require.NoError(t, err)
	r2, err := NewAggregator(unfiltered, nil).Aggregate(context.Background(), Options{Repos: repos, FilterByAuthors: false})
	require.NoError(t, err)

	assert.Equal(t, r2.Days, r1.Days)
	require.Len(t, filtered.calls, 1)
	assert.Empty(t, filtered.calls[0].authors)
	assert.Empty(t, unfiltered.calls[0].authors)
}

func TestAggregatePassesAuthorsWhenFiltering(t *testing.T) {
	b := twoRepoBackend()
	_, err := NewAggregator(b, nil).Aggregate(context.Background(), Options{
		Repos: []string{"/src/repo-a"}, FilterByAuthors: true, Authors: []string{"alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, b.calls[0].authors)

	b = twoRepoBackend()
	_, err = NewAggregator(b, nil).Aggregate(context.Background(), Options{
		Repos: []string{"/src/repo-a"}, FilterByAuthors: false, Authors: []string{"alice"},
	})
	require.NoError(t, err)
	assert.Nil(t, b.calls[0].authors)
}

func TestAggregateSkipsFailedRepository(t *testing.T) {
	b := twoRepoBackend()
	b.fail = map[string]error{"/src/broken": errors.New("not a git repository")}

	res, err := NewAggregator(b, nil).Aggregate(context.Background(), Options{Repos: []string{"/src/broken", "/src/repo-a"}})
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "/src/broken", res.Failures[0].Path)
	require.Len(t, res.Days, 1)
	assert.Equal(t, "a1", res.Days[0].Commits[0].Hash)
	assert.Len(t, b.calls, 2)
}

func TestAggregateRecordsCurrentRepo(t *testing.T) {
	agg := NewAggregator(twoRepoBackend(), nil)
	_, err := agg.Aggregate(context.Background(), Options{Repos: []string{"/src/repo-a"}})
	require.NoError(t, err)
	assert.Equal(t, "/src/repo-a", agg.CurrentRepo())

	_, err = agg.Aggregate(context.Background(), Options{Repos: []string{"/src/repo-a", "/src/repo-b"}})
	require.NoError(t, err)
	assert.Equal(t, "/src/repo-a", agg.CurrentRepo())
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAggregator(twoRepoBackend(), nil).Aggregate(ctx, Options{Repos: []string{"/src/repo-a"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreset(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.Local)

	r, err := Preset("today", now)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Since: "2024-01-10", Until: "2024-01-10"}, r)

	r, err = Preset("this-week", now)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Since: "2024-01-08", Until: "2024-01-14"}, r)

	r, err = Preset("last-week", now)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Since: "2024-01-01", Until: "2024-01-07"}, r)

	sunday := time.Date(2024, 1, 14, 10, 0, 0, 0, time.Local)
	r, err = Preset("this-week", sunday)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", r.Since)

	_, err = Preset("fortnight", now)
	assert.Error(t, err)
}

func TestParseRangeAndFilter(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.Local)
	r, err := ParseRange("this-week", "2024-01-09", "", now)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Since: "2024-01-09", Until: "2024-01-14"}, r)

	_, err = ParseRange("", "01/09/2024", "", now)
	assert.Error(t, err)

	days := []git.WorkDay{{Date: "2024-01-11"}, {Date: "2024-01-09"}, {Date: "2024-01-08"}}
	got := FilterDays(days, DateRange{Since: "2024-01-09", Until: "2024-01-11"})
	assert.Equal(t, []git.WorkDay{{Date: "2024-01-11"}, {Date: "2024-01-09"}}, got)
	assert.Len(t, FilterDays(days, DateRange{}), 3)
}

func TestCommitURL(t *testing.T) {
	tests := []struct {
		remote, want string
	}{
		{"git@github.com:acme/widgets.git", "https://github.com/acme/widgets/commit/abc"},
		{"https://github.com/acme/widgets", "https://github.com/acme/widgets/commit/abc"},
		{"https://gitlab.com/group/sub/proj.git", "https://gitlab.com/group/sub/proj/-/commit/abc"},
		{"git@bitbucket.org:team/repo.git", "https://bitbucket.org/team/repo/commits/abc"},
		{"https://git.sr.ht/~user/repo", "https://git.sr.ht/~user/repo/commit/abc"},
		{"https://codeberg.org/user/repo.git", "https://codeberg.org/user/repo/commit/abc"},
		{"https://git.internal.example/repo.git", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CommitURL(tt.remote, "abc"), tt.remote)
	}
}

func sampleDay() git.WorkDay {
	return git.NewWorkDay("2024-01-10", []git.Commit{
		{Hash: "b1", Message: "Add export\n\nlong body", Timestamp: at(10, 14), RemoteURL: "git@github.com:acme/widgets.git", RepoName: "widgets"},
		{Hash: "a1", Message: "Fix login", Timestamp: at(10, 9)},
	})
}

func TestDayCopyText(t *testing.T) {
	day := sampleDay()
	all := config.CopySettings{IncludeCommitLinks: true, IncludeDate: true}

	assert.Equal(t,
		"Wednesday, January 10, 2024\n\nAdd export (https://github.com/acme/widgets/commit/b1)\nFix login",
		DayCopyText(day, all))
	assert.Equal(t, "Add export\nFix login", DayCopyText(day, config.CopySettings{}))
}

func TestSummaryCopyText(t *testing.T) {
	day := sampleDay()
	all := config.CopySettings{IncludeCommitLinks: true, IncludeDate: true}

	assert.Equal(t,
		"Wednesday, January 10, 2024\n\nI shipped export.\n\nCommits:\nhttps://github.com/acme/widgets/commit/b1",
		SummaryCopyText(day, "I shipped export.", all))

	noLinks := git.NewWorkDay("2024-01-10", []git.Commit{{Hash: "a1", Message: "Fix", Timestamp: at(10, 9)}})
	assert.Equal(t, "Wednesday, January 10, 2024\n\nI fixed it.", SummaryCopyText(noLinks, "I fixed it.", all))
}

func TestReportFormats(t *testing.T) {
	now := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)
	rep := NewReport("Alice", []git.WorkDay{sampleDay()}, map[string]string{"2024-01-10": "I shipped export."},
		DateRange{Since: "2024-01-08"}, now)

	md := rep.Markdown()
	assert.True(t, strings.HasPrefix(md, "# Work Log - Alice\n\n*Generated on January 12, 2024*"))
	assert.Contains(t, md, "# Wednesday, January 10, 2024")
	assert.Contains(t, md, "## Summary\n\nI shipped export.")
	assert.Contains(t, md, "- **2:00 PM** `b1` Add export _(widgets)_ [link](https://github.com/acme/widgets/commit/b1)")

	var buf bytes.Buffer
	require.NoError(t, rep.Write(&buf, FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	days := decoded["days"].([]any)
	first := days[0].(map[string]any)
	assert.Equal(t, "2024-01-10", first["date"])
	assert.Equal(t, "I shipped export.", first["summary"])
	assert.EqualValues(t, 2, first["totalCommits"])

	buf.Reset()
	require.NoError(t, rep.Write(&buf, FormatYAML))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	ydays := y["days"].([]any)
	assert.Equal(t, "2024-01-10", ydays[0].(map[string]any)["date"])
	assert.Equal(t, "2024-01-08", y["since"])

	_, err := ParseFormat("csv")
	assert.Error(t, err)
	f, err := ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
}

func TestIsRefChange(t *testing.T) {
	gitDir := filepath.Join("repo", ".git")
	assert.True(t, isRefChange(gitDir, filepath.Join(gitDir, "HEAD")))
	assert.True(t, isRefChange(gitDir, filepath.Join(gitDir, "packed-refs")))
	assert.True(t, isRefChange(gitDir, filepath.Join(gitDir, "refs", "heads", "main")))
	assert.False(t, isRefChange(gitDir, filepath.Join(gitDir, "refs", "heads", "main.lock")))
	assert.False(t, isRefChange(gitDir, filepath.Join(gitDir, "index")))
	assert.False(t, isRefChange(gitDir, filepath.Join(gitDir, "objects", "ab", "cdef")))
}

func TestRepoWatcherDebouncesRefUpdates(t *testing.T) {
	repo := t.TempDir()
	heads := filepath.Join(repo, ".git", "refs", "heads")
	require.NoError(t, os.MkdirAll(heads, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	w := NewRepoWatcher(repo, 100*time.Millisecond, nil)
	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(repo, ".git", "index"), []byte("x"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(heads, "main"), []byte(fmt.Sprintf("%040d\n", i)), 0644))
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case <-changes:
		t.Fatal("burst reported more than once")
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
