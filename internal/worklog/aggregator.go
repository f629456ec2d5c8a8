package worklog

import (
	"context"
	"sync"

	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/logger"
)

// RepoAnalyzer is the part of the git backend the aggregator needs.
type RepoAnalyzer interface {
	AnalyzeRepository(ctx context.Context, repoPath string, authors []string) ([]git.WorkDay, error)
}

// Options selects what to aggregate.
type Options struct {
	Repos           []string
	FilterByAuthors bool
	Authors         []string
}

// authorFilter is the list passed to the backend; nil means no filtering.
func (o Options) authorFilter() []string {
	if !o.FilterByAuthors || len(o.Authors) == 0 {
		return nil
	}
	return o.Authors
}

// RepoFailure records a repository that was skipped.
type RepoFailure struct {
	Path string
	Err  error
}

type Result struct {
	Days     []git.WorkDay
	Failures []RepoFailure
}

// Aggregator merges the histories of several repositories into one timeline.
type Aggregator struct {
	backend RepoAnalyzer
	log     logger.Logger

	mu      sync.Mutex
	current string
}

func NewAggregator(backend RepoAnalyzer, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{backend: backend, log: log}
}

// Aggregate analyzes each repository in order, one at a time. A repository that fails is
// logged and skipped. Only cancellation makes the whole call fail.
func (a *Aggregator) Aggregate(ctx context.Context, opts Options) (*Result, error) {
	authors := opts.authorFilter()
	byDate := make(map[string][]git.Commit)
	res := &Result{}

	for _, repoPath := range opts.Repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		days, err := a.backend.AnalyzeRepository(ctx, repoPath, authors)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.log.Error("failed to analyze repository", "repo", repoPath, "error", err)
			res.Failures = append(res.Failures, RepoFailure{Path: repoPath, Err: err})
			continue
		}

		name := git.RepoName(repoPath)
		for _, day := range days {
			for _, c := range day.Commits {
				c.RepoPath = repoPath
				c.RepoName = name
				byDate[day.Date] = append(byDate[day.Date], c)
			}
		}
		a.log.Debug("repository analyzed", "repo", repoPath, "days", len(days))
	}

	res.Days = make([]git.WorkDay, 0, len(byDate))
	for date, commits := range byDate {
		res.Days = append(res.Days, git.NewWorkDay(date, commits))
	}
	git.SortWorkDays(res.Days)

	if len(opts.Repos) == 1 {
		a.mu.Lock()
		a.current = opts.Repos[0]
		a.mu.Unlock()
	}
	return res, nil
}

// CurrentRepo is the repository of the last single-repository aggregation.
func (a *Aggregator) CurrentRepo() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// AllCommits flattens days into one list, newest first.
func AllCommits(days []git.WorkDay) []git.Commit {
	var out []git.Commit
	for _, d := range days {
		out = append(out, d.Commits...)
	}
	return out
}

// FindDay returns the day with the given date.
func FindDay(days []git.WorkDay, date string) (git.WorkDay, bool) {
	for _, d := range days {
		if d.Date == date {
			return d, true
		}
	}
	return git.WorkDay{}, false
}
