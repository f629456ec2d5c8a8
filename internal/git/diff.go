package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
)

// contextLines is how many unchanged lines are kept around each change.
const contextLines = 3

var ignoredExtensions = []string{
	".min.js", ".min.css", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg",
	".woff", ".woff2", ".ttf", ".eot",
	".pdf", ".zip", ".gz", ".tar",
	".mp4", ".mp3", ".wav", ".avi", ".mov", ".webm",
	".lock", ".sum",
}

var ignoredDirs = []string{
	"node_modules/", "dist/", "build/", "target/", ".git/",
	"vendor/", "__pycache__/", ".venv/", "venv/",
}

// IsIgnoredPath reports whether a file is excluded from diffs: generated, binary-like,
// lock files, or anything under a dependency/build directory.
func IsIgnoredPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range ignoredExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, dir := range ignoredDirs {
		if strings.HasPrefix(path, dir) || strings.Contains(path, "/"+dir) {
			return true
		}
	}
	return false
}

// DiffOptions caps what CommitDiffs returns. Zero values mean no cap.
type DiffOptions struct {
	MaxFileSizeKB int
	MaxFiles      int
}

// CommitDiffs returns per-file diffs of the commit against its first parent.
// Root commits have no parent and yield no diffs.
func (r *Repository) CommitDiffs(hash string, opts DiffOptions) ([]FileDiff, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to find commit %s: %w", hash, err)
	}
	if commit.NumParents() == 0 {
		return []FileDiff{}, nil
	}

	changes, err := firstParentChanges(commit)
	if err != nil {
		return nil, fmt.Errorf("failed to diff commit %s: %w", hash, err)
	}

	maxBytes := int64(opts.MaxFileSizeKB) * 1024
	diffs := []FileDiff{}
	for _, change := range changes {
		if opts.MaxFiles > 0 && len(diffs) >= opts.MaxFiles {
			break
		}
		path := getChangePath(change)
		if IsIgnoredPath(path) {
			continue
		}

		_, to, err := change.Files()
		if err != nil {
			continue
		}
		if maxBytes > 0 && to != nil && to.Size > maxBytes {
			continue
		}

		patch, err := change.Patch()
		if err != nil {
			continue
		}
		fd := FileDiff{Path: path}
		var b strings.Builder
		for _, fp := range patch.FilePatches() {
			if fp.IsBinary() {
				continue
			}
			writeChunks(&b, fp.Chunks(), &fd)
		}
		fd.Diff = b.String()
		if fd.Diff == "" {
			continue
		}
		diffs = append(diffs, fd)
	}
	return diffs, nil
}

// writeChunks renders chunks as prefixed lines, trimming long unchanged runs down to
// contextLines on each side of a change.
func writeChunks(b *strings.Builder, chunks []fdiff.Chunk, fd *FileDiff) {
	for i, chunk := range chunks {
		lines := splitLines(chunk.Content())
		switch chunk.Type() {
		case fdiff.Add:
			fd.Additions += len(lines)
			writePrefixed(b, "+", lines)
		case fdiff.Delete:
			fd.Deletions += len(lines)
			writePrefixed(b, "-", lines)
		case fdiff.Equal:
			writePrefixed(b, " ", trimContext(lines, i == 0, i == len(chunks)-1))
		}
	}
}

func trimContext(lines []string, first, last bool) []string {
	n := len(lines)
	switch {
	case first && last:
		return nil
	case first:
		if n > contextLines {
			return lines[n-contextLines:]
		}
	case last:
		if n > contextLines {
			return lines[:contextLines]
		}
	default:
		if n > 2*contextLines {
			out := make([]string, 0, 2*contextLines)
			out = append(out, lines[:contextLines]...)
			return append(out, lines[n-contextLines:]...)
		}
	}
	return lines
}

func writePrefixed(b *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		b.WriteString(prefix)
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
