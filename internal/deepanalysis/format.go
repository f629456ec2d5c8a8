package deepanalysis

import (
	"fmt"
	"strings"

	"github.com/ishaan812/farmer/internal/git"
)

const (
	maxFilesShown = 5
	maxDiffLines  = 15
)

// FormatCommits renders one entry per subject: "N. subject", followed by diff excerpts when
// diffs has an entry for the parallel commit. commits and diffs may be nil.
func FormatCommits(subjects []string, commits []git.Commit, diffs map[string][]git.FileDiff) []string {
	entries := make([]string, 0, len(subjects))
	for i, subject := range subjects {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s", i+1, subject)

		var fileDiffs []git.FileDiff
		if i < len(commits) {
			fileDiffs = diffs[commits[i].Hash]
		}
		writeDiffs(&b, fileDiffs)
		entries = append(entries, b.String())
	}
	return entries
}

// Format joins FormatCommits into a single block.
func Format(subjects []string, commits []git.Commit, diffs map[string][]git.FileDiff) string {
	return strings.Join(FormatCommits(subjects, commits, diffs), "\n")
}

func writeDiffs(b *strings.Builder, fileDiffs []git.FileDiff) {
	shown := fileDiffs
	if len(shown) > maxFilesShown {
		shown = shown[:maxFilesShown]
	}
	for _, d := range shown {
		fmt.Fprintf(b, "\n   📁 %s (+%d/-%d)", d.Path, d.Additions, d.Deletions)
		lines := strings.Split(strings.TrimRight(d.Diff, "\n"), "\n")
		truncated := len(lines) > maxDiffLines
		if truncated {
			lines = lines[:maxDiffLines]
		}
		for _, line := range lines {
			b.WriteString("\n      ")
			b.WriteString(line)
		}
		if truncated {
			b.WriteString("\n      ... (truncated)")
		}
	}
	if extra := len(fileDiffs) - maxFilesShown; extra > 0 {
		fmt.Fprintf(b, "\n   ... and %d more files changed", extra)
	}
}

// Subjects returns the first message line of each commit.
func Subjects(commits []git.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Subject()
	}
	return out
}
