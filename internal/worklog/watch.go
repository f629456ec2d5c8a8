package worklog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ishaan812/farmer/internal/logger"
)

// DefaultDebounce is how long the watcher waits for ref updates to settle.
const DefaultDebounce = 500 * time.Millisecond

// RepoWatcher reports when a repository's HEAD or refs change.
type RepoWatcher struct {
	repoPath string
	debounce time.Duration
	log      logger.Logger
}

func NewRepoWatcher(repoPath string, debounce time.Duration, log logger.Logger) *RepoWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RepoWatcher{repoPath: repoPath, debounce: debounce, log: log}
}

// Run calls onChange after each burst of ref changes until ctx is done.
// It returns nil when ctx is cancelled.
func (w *RepoWatcher) Run(ctx context.Context, onChange func()) error {
	gitDir := filepath.Join(w.repoPath, ".git")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(gitDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", gitDir, err)
	}
	if err := w.addRefDirs(watcher, filepath.Join(gitDir, "refs")); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) {
				_ = w.addRefDirs(watcher, ev.Name)
			}
			if !isRefChange(gitDir, ev.Name) {
				continue
			}
			w.log.Debug("ref changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *RepoWatcher) addRefDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isRefChange reports whether path is HEAD, packed-refs or something under refs/.
// Lock files are ignored; the rename that follows them is what counts.
func isRefChange(gitDir, path string) bool {
	if strings.HasSuffix(path, ".lock") {
		return false
	}
	rel, err := filepath.Rel(gitDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "HEAD" || rel == "packed-refs" || strings.HasPrefix(rel, "refs/")
}
