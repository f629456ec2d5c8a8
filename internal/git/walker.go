package git

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

type WalkOptions struct {
	Workers int
	Since   time.Time // only commits authored after this instant
	// Authors keeps commits whose author name or email contains any entry, case-insensitively.
	// Empty means every author.
	Authors    []string
	OnProgress func(processed, total int)
}

// WalkCommits collects the commits reachable from HEAD that match opts. Changed files are
// computed concurrently; results come back in history order, newest first.
func WalkCommits(ctx context.Context, repo *Repository, opts WalkOptions) ([]Commit, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	gitRepo := repo.Git()
	head, err := gitRepo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := gitRepo.Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create log iterator: %w", err)
	}

	var matched []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !opts.Since.IsZero() && c.Author.When.Before(opts.Since) {
			return storer.ErrStop
		}
		if MatchesAuthor(c.Author.Name, c.Author.Email, opts.Authors) {
			matched = append(matched, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	if len(matched) == 0 {
		return nil, nil
	}

	jobs := make(chan int, len(matched))
	out := make([]Commit, len(matched))

	var wg sync.WaitGroup
	var mu sync.Mutex
	processed := 0

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = toCommit(matched[idx], repo)
				if opts.OnProgress != nil {
					mu.Lock()
					processed++
					opts.OnProgress(processed, len(matched))
					mu.Unlock()
				}
			}
		}()
	}

	for i := range matched {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchesAuthor reports whether name or email contains any of the patterns, ignoring case.
func MatchesAuthor(name, email string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	name = strings.ToLower(name)
	email = strings.ToLower(email)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(name, p) || strings.Contains(email, p) {
			return true
		}
	}
	return false
}

func toCommit(c *object.Commit, repo *Repository) Commit {
	return Commit{
		Hash:         c.Hash.String(),
		Author:       c.Author.Name,
		Timestamp:    c.Author.When,
		Message:      strings.TrimSpace(c.Message),
		FilesChanged: changedFiles(c),
		RepoPath:     repo.Path(),
	}
}

// changedFiles lists the paths touched relative to the first parent. Errors yield an empty list.
func changedFiles(c *object.Commit) []string {
	changes, err := firstParentChanges(c)
	if err != nil {
		return []string{}
	}
	files := make([]string, 0, len(changes))
	for _, change := range changes {
		files = append(files, getChangePath(change))
	}
	return files
}

func firstParentChanges(c *object.Commit) (object.Changes, error) {
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("failed to get parent tree: %w", err)
		}
	}

	commitTree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	return object.DiffTree(parentTree, commitTree)
}

func getChangePath(change *object.Change) string {
	if change.To.Name != "" {
		return change.To.Name
	}
	return change.From.Name
}
