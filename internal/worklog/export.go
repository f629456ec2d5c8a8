package worklog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ishaan812/farmer/internal/git"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: md, json, yaml)", s)
	}
}

// ExportDay is a work day with its stored summary, if any.
type ExportDay struct {
	git.WorkDay `yaml:",inline"`
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Report is the exported worklog.
type Report struct {
	Author      string      `json:"author,omitempty" yaml:"author,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt" yaml:"generatedAt"`
	Since       string      `json:"since,omitempty" yaml:"since,omitempty"`
	Until       string      `json:"until,omitempty" yaml:"until,omitempty"`
	Days        []ExportDay `json:"days" yaml:"days"`
}

// NewReport pairs days with summaries keyed by date.
func NewReport(author string, days []git.WorkDay, summaries map[string]string, r DateRange, now time.Time) Report {
	rep := Report{
		Author:      author,
		GeneratedAt: now,
		Since:       r.Since,
		Until:       r.Until,
		Days:        make([]ExportDay, 0, len(days)),
	}
	for _, d := range days {
		rep.Days = append(rep.Days, ExportDay{WorkDay: d, Summary: summaries[d.Date]})
	}
	return rep
}

// Write renders the report in the given format.
func (rep Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, rep.Markdown())
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Markdown renders the report as a markdown worklog.
func (rep Report) Markdown() string {
	var sb strings.Builder

	author := rep.Author
	if author == "" {
		author = "Developer"
	}
	sb.WriteString(fmt.Sprintf("# Work Log - %s\n\n", author))
	sb.WriteString(fmt.Sprintf("*Generated on %s*\n\n", rep.GeneratedAt.Format("January 2, 2006")))

	if len(rep.Days) > 0 {
		start := rep.Days[len(rep.Days)-1].Date
		end := rep.Days[0].Date
		sb.WriteString(fmt.Sprintf("**Period:** %s - %s\n\n", start, end))
	}
	sb.WriteString("---\n\n")

	if len(rep.Days) == 0 {
		sb.WriteString("No commits in this period.\n\n")
	}

	for _, day := range rep.Days {
		sb.WriteString(fmt.Sprintf("# %s\n\n", FormatLongDate(day.Date)))
		sb.WriteString(fmt.Sprintf("*%d commits", day.TotalCommits))
		if day.FirstCommitTime != "" {
			sb.WriteString(fmt.Sprintf(", %s - %s", day.FirstCommitTime, day.LastCommitTime))
		}
		sb.WriteString("*\n\n")

		if day.Summary != "" {
			sb.WriteString("## Summary\n\n")
			sb.WriteString(strings.TrimSpace(day.Summary))
			sb.WriteString("\n\n")
		}

		sb.WriteString("## Commits\n\n")
		for _, c := range day.Commits {
			message := c.Subject()
			if len(message) > 70 {
				message = message[:67] + "..."
			}
			sb.WriteString(fmt.Sprintf("- **%s** `%s` %s", git.FormatClock(c.Timestamp), c.ShortHash(), message))
			if c.RepoName != "" {
				sb.WriteString(fmt.Sprintf(" _(%s)_", c.RepoName))
			}
			if url := CommitURL(c.RemoteURL, c.Hash); url != "" {
				sb.WriteString(fmt.Sprintf(" [link](%s)", url))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("*Generated by farmer*\n")
	return sb.String()
}
