package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/logger"
)

var (
	// ErrBackendUnavailable marks failures of the backend itself, as opposed to a problem
	// with one repository or commit.
	ErrBackendUnavailable = errors.New("git backend unavailable")
	// ErrRepoUnavailable means a single repository could not be opened.
	ErrRepoUnavailable = errors.New("repository unavailable")
)

// Backend provides repository history, diffs and identity.
type Backend interface {
	// AnalyzeRepository returns the repository's recent commits grouped into WorkDays.
	AnalyzeRepository(ctx context.Context, repoPath string, authors []string) ([]WorkDay, error)
	// CommitDiffs returns per-file diffs for one commit.
	CommitDiffs(ctx context.Context, repoPath, hash string, opts DiffOptions) ([]FileDiff, error)
	// GitConfig returns the configured user.name and user.email, skipping empty values.
	GitConfig(ctx context.Context) ([]string, error)
}

// LocalBackend reads repositories from disk with go-git.
type LocalBackend struct {
	log      logger.Logger
	window   time.Duration
	now      func() time.Time
	progress func(repoPath string, processed, total int)
}

type LocalOption func(*LocalBackend)

// WithWindow sets how far back AnalyzeRepository looks.
func WithWindow(d time.Duration) LocalOption {
	return func(b *LocalBackend) { b.window = d }
}

// WithProgress reports how many matching commits of a repository have been read.
func WithProgress(fn func(repoPath string, processed, total int)) LocalOption {
	return func(b *LocalBackend) { b.progress = fn }
}

func WithClock(now func() time.Time) LocalOption {
	return func(b *LocalBackend) { b.now = now }
}

func NewLocalBackend(log logger.Logger, opts ...LocalOption) *LocalBackend {
	if log == nil {
		log = logger.Nop()
	}
	b := &LocalBackend{
		log:    log,
		window: time.Duration(constants.HistoryWindowDays) * 24 * time.Hour,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *LocalBackend) AnalyzeRepository(ctx context.Context, repoPath string, authors []string) ([]WorkDay, error) {
	repo, err := OpenRepo(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepoUnavailable, err)
	}
	remote := repo.RemoteURL()

	walk := WalkOptions{
		Since:   b.now().Add(-b.window),
		Authors: authors,
	}
	if b.progress != nil {
		walk.OnProgress = func(processed, total int) { b.progress(repo.Path(), processed, total) }
	}
	commits, err := WalkCommits(ctx, repo, walk)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", repoPath, err)
	}
	for i := range commits {
		commits[i].RemoteURL = remote
	}

	days := GroupByDate(commits)
	b.log.Debug("analyzed repository", "repo", repo.Path(), "commits", len(commits), "days", len(days))
	return days, nil
}

func (b *LocalBackend) CommitDiffs(ctx context.Context, repoPath, hash string, opts DiffOptions) ([]FileDiff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo, err := OpenRepo(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepoUnavailable, err)
	}
	return repo.CommitDiffs(hash, opts)
}

func (b *LocalBackend) GitConfig(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, email, err := GlobalIdentity()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	var out []string
	if name != "" {
		out = append(out, name)
	}
	if email != "" {
		out = append(out, email)
	}
	return out, nil
}
