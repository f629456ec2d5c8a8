package worklog

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ishaan812/farmer/internal/config"
	"github.com/ishaan812/farmer/internal/git"
)

// LongDateLayout is the heading format for a work day.
const LongDateLayout = "Monday, January 2, 2006"

type commitURLPattern struct {
	re       *regexp.Regexp
	template string // %[1]s repo, %[2]s hash
}

var commitURLPatterns = []commitURLPattern{
	{regexp.MustCompile(`github\.com[:/](.+?)(?:\.git)?/?$`), "https://github.com/%[1]s/commit/%[2]s"},
	{regexp.MustCompile(`gitlab\.com[:/](.+?)(?:\.git)?/?$`), "https://gitlab.com/%[1]s/-/commit/%[2]s"},
	{regexp.MustCompile(`bitbucket\.org[:/](.+?)(?:\.git)?/?$`), "https://bitbucket.org/%[1]s/commits/%[2]s"},
	{regexp.MustCompile(`git\.sr\.ht[:/](.+?)(?:\.git)?/?$`), "https://git.sr.ht/%[1]s/commit/%[2]s"},
	{regexp.MustCompile(`codeberg\.org[:/](.+?)(?:\.git)?/?$`), "https://codeberg.org/%[1]s/commit/%[2]s"},
}

// CommitURL links a commit on a known forge, or returns "" for unknown remotes.
func CommitURL(remoteURL, hash string) string {
	if remoteURL == "" || hash == "" {
		return ""
	}
	for _, p := range commitURLPatterns {
		if m := p.re.FindStringSubmatch(remoteURL); m != nil {
			return fmt.Sprintf(p.template, m[1], hash)
		}
	}
	return ""
}

// FormatLongDate renders a YYYY-MM-DD key as "Wednesday, January 10, 2024".
func FormatLongDate(date string) string {
	t, err := time.Parse(git.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(LongDateLayout)
}

// CommitLine is a commit's subject, followed by its URL in parentheses when known.
func CommitLine(c git.Commit, withLink bool) string {
	line := c.Subject()
	if withLink {
		if url := CommitURL(c.RemoteURL, c.Hash); url != "" {
			line += " (" + url + ")"
		}
	}
	return line
}

// DayCopyText renders a work day's commits for pasting into a time tracker.
func DayCopyText(day git.WorkDay, s config.CopySettings) string {
	lines := make([]string, len(day.Commits))
	for i, c := range day.Commits {
		lines[i] = CommitLine(c, s.IncludeCommitLinks)
	}
	body := strings.Join(lines, "\n")
	if !s.IncludeDate {
		return body
	}
	return FormatLongDate(day.Date) + "\n\n" + body
}

// SummaryCopyText renders an AI summary of a day, followed by the commit links.
func SummaryCopyText(day git.WorkDay, summary string, s config.CopySettings) string {
	var b strings.Builder
	if s.IncludeDate {
		b.WriteString(FormatLongDate(day.Date))
		b.WriteString("\n\n")
	}
	b.WriteString(summary)

	if s.IncludeCommitLinks {
		var urls []string
		for _, c := range day.Commits {
			if url := CommitURL(c.RemoteURL, c.Hash); url != "" {
				urls = append(urls, url)
			}
		}
		if len(urls) > 0 {
			b.WriteString("\n\nCommits:\n")
			b.WriteString(strings.Join(urls, "\n"))
		}
	}
	return b.String()
}
