package git

import (
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the WorkDay grouping key format.
	DateLayout = "2006-01-02"
	// ClockLayout renders first/last commit times, e.g. "9:05 AM".
	ClockLayout = "3:04 PM"
)

// Commit is one commit as returned by the backend, tagged with its repository.
type Commit struct {
	Hash         string    `json:"hash" yaml:"hash"`
	Author       string    `json:"author" yaml:"author"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Message      string    `json:"message" yaml:"message"`
	FilesChanged []string  `json:"filesChanged" yaml:"filesChanged"`
	RepoPath     string    `json:"repoPath" yaml:"repoPath"`
	RepoName     string    `json:"repoName,omitempty" yaml:"repoName,omitempty"`
	RemoteURL    string    `json:"remoteUrl,omitempty" yaml:"remoteUrl,omitempty"`
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	msg := strings.TrimSpace(c.Message)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return strings.TrimSpace(msg[:i])
	}
	return msg
}

// ShortHash returns the 7 character abbreviation.
func (c Commit) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// FileDiff is the diff of one file in one commit.
type FileDiff struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Diff      string `json:"diff"`
}

// WorkDay groups every commit made on one calendar date.
type WorkDay struct {
	Date            string   `json:"date" yaml:"date"`
	Commits         []Commit `json:"commits" yaml:"commits"`
	TotalCommits    int      `json:"totalCommits" yaml:"totalCommits"`
	FirstCommitTime string   `json:"firstCommitTime,omitempty" yaml:"firstCommitTime,omitempty"`
	LastCommitTime  string   `json:"lastCommitTime,omitempty" yaml:"lastCommitTime,omitempty"`
}

// NewWorkDay builds a WorkDay for date. The commits are copied and sorted newest first;
// the count and first/last clock times are derived from them.
func NewWorkDay(date string, commits []Commit) WorkDay {
	sorted := make([]Commit, len(commits))
	copy(sorted, commits)
	SortCommits(sorted)

	day := WorkDay{
		Date:         date,
		Commits:      sorted,
		TotalCommits: len(sorted),
	}
	if len(sorted) > 0 {
		day.FirstCommitTime = FormatClock(sorted[len(sorted)-1].Timestamp)
		day.LastCommitTime = FormatClock(sorted[0].Timestamp)
	}
	return day
}

// SortCommits orders commits by timestamp descending. Ties fall back to repository then hash
// so the order does not depend on input order.
func SortCommits(commits []Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		a, b := commits[i], commits[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.RepoPath != b.RepoPath {
			return a.RepoPath < b.RepoPath
		}
		return a.Hash < b.Hash
	})
}

// SortWorkDays orders days by date descending.
func SortWorkDays(days []WorkDay) {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
}

// GroupByDate buckets commits by their local calendar date.
func GroupByDate(commits []Commit) []WorkDay {
	dateMap := make(map[string][]Commit)
	for _, c := range commits {
		key := DateKey(c.Timestamp)
		dateMap[key] = append(dateMap[key], c)
	}

	days := make([]WorkDay, 0, len(dateMap))
	for date, dayCommits := range dateMap {
		days = append(days, NewWorkDay(date, dayCommits))
	}
	SortWorkDays(days)
	return days
}

// DateKey formats t as a local YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// FormatClock formats t as a local time of day.
func FormatClock(t time.Time) string {
	return t.Local().Format(ClockLayout)
}
