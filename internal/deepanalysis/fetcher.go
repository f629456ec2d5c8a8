package deepanalysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/logger"
)

// DiffSource is the part of the git backend the fetcher needs.
type DiffSource interface {
	CommitDiffs(ctx context.Context, repoPath, hash string, opts git.DiffOptions) ([]git.FileDiff, error)
}

// Fetcher retrieves per-commit diffs with a fixed retry budget.
type Fetcher struct {
	source  DiffSource
	log     logger.Logger
	retries int
	delay   time.Duration
}

type Option func(*Fetcher)

// WithRetry sets the number of retries after the first attempt and the pause between attempts.
func WithRetry(retries int, delay time.Duration) Option {
	return func(f *Fetcher) {
		f.retries = retries
		f.delay = delay
	}
}

func NewFetcher(source DiffSource, log logger.Logger, opts ...Option) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	f := &Fetcher{
		source:  source,
		log:     log,
		retries: constants.DiffRetryCount,
		delay:   constants.DiffRetryDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch maps commit hash to its diffs. Commits whose retrieval keeps failing, or that have
// no diffs, are left out; a repository that cannot be opened drops its remaining commits.
// Only cancellation and git.ErrBackendUnavailable abort the fetch.
func (f *Fetcher) Fetch(ctx context.Context, commits []git.Commit, opts git.DiffOptions) (map[string][]git.FileDiff, error) {
	result := make(map[string][]git.FileDiff)

	for _, group := range groupByRepo(commits) {
		for i, commit := range group {
			diffs, err := f.fetchOne(ctx, commit.RepoPath, commit.Hash, opts)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				if errors.Is(err, git.ErrBackendUnavailable) {
					return nil, fmt.Errorf("failed to fetch diffs: %w", err)
				}
				if errors.Is(err, git.ErrRepoUnavailable) {
					f.log.Warn("skipping diffs for repository", "repo", commit.RepoPath,
						"commits", len(group)-i, "error", err)
					break
				}
				f.log.Warn("failed to get diffs", "commit", commit.Hash,
					"attempts", f.retries+1, "error", err)
				continue
			}
			if len(diffs) > 0 {
				result[commit.Hash] = diffs
			}
		}
	}

	f.log.Debug("fetched diffs", "commits", len(commits), "with_diffs", len(result))
	return result, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, repoPath, hash string, opts git.DiffOptions) ([]git.FileDiff, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		diffs, err := f.source.CommitDiffs(ctx, repoPath, hash, opts)
		if err == nil {
			return diffs, nil
		}
		lastErr = err
		f.log.Debug("diff attempt failed", "commit", hash, "attempt", attempt+1, "error", err)

		if attempt < f.retries {
			if err := sleep(ctx, f.delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// groupByRepo keeps repositories in first-seen order and commits in input order.
func groupByRepo(commits []git.Commit) [][]git.Commit {
	index := make(map[string]int)
	var groups [][]git.Commit
	for _, c := range commits {
		i, ok := index[c.RepoPath]
		if !ok {
			i = len(groups)
			index[c.RepoPath] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], c)
	}
	return groups
}
