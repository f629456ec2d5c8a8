package config

import (
	"path/filepath"

	"github.com/ishaan812/farmer/internal/constants"
)

func normalizePath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// AddRepoToHistory moves path to the front of the history, de-duplicated and capped.
func (s *Settings) AddRepoToHistory(path string) {
	path = normalizePath(path)
	history := []string{path}
	for _, p := range s.RepoHistory {
		if p != path {
			history = append(history, p)
		}
	}
	if len(history) > constants.MaxRepoHistory {
		history = history[:constants.MaxRepoHistory]
	}
	s.RepoHistory = history
}

// SetRepoPath records the single-repository context and adds it to the history.
func (s *Settings) SetRepoPath(path string) {
	if path == "" {
		s.RepoPath = ""
		return
	}
	s.RepoPath = normalizePath(path)
	s.AddRepoToHistory(s.RepoPath)
}

// ActivateRepo adds path to the active set and history. It reports whether the set changed.
func (s *Settings) ActivateRepo(path string) bool {
	path = normalizePath(path)
	s.AddRepoToHistory(path)
	for _, r := range s.ActiveRepos {
		if r == path {
			return false
		}
	}
	s.ActiveRepos = append(s.ActiveRepos, path)
	return true
}

// DeactivateRepo removes path from the active set. It reports whether it was present.
func (s *Settings) DeactivateRepo(path string) bool {
	path = normalizePath(path)
	for i, r := range s.ActiveRepos {
		if r == path {
			s.ActiveRepos = append(s.ActiveRepos[:i], s.ActiveRepos[i+1:]...)
			return true
		}
	}
	return false
}

// Repos returns the repositories to aggregate: the active set, or the current repository.
func (s *Settings) Repos() []string {
	if len(s.ActiveRepos) > 0 {
		out := make([]string, len(s.ActiveRepos))
		copy(out, s.ActiveRepos)
		return out
	}
	if s.RepoPath != "" {
		return []string{s.RepoPath}
	}
	return nil
}
