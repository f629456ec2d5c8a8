package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

type Repository struct {
	repo *git.Repository
	path string
}

func OpenRepo(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpen(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", absPath, err)
	}

	return &Repository{
		repo: repo,
		path: absPath,
	}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Git() *git.Repository {
	return r.repo
}

// RemoteURL returns the first URL of the origin remote, or "" when there is none.
func (r *Repository) RemoteURL() string {
	remote, err := r.repo.Remote("origin")
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// RepoName derives a display name from the last path segment.
func RepoName(path string) string {
	clean := filepath.Clean(path)
	name := filepath.Base(clean)
	if name == "." || name == string(filepath.Separator) {
		return clean
	}
	return name
}

// GlobalIdentity returns the user.name and user.email from the global git configuration.
func GlobalIdentity() (name, email string, err error) {
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return "", "", fmt.Errorf("failed to get git config: %w", err)
	}
	return cfg.User.Name, cfg.User.Email, nil
}
