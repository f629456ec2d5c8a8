package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ishaan812/farmer/internal/worklog"
)

var (
	exportRange     rangeFlags
	exportFormat    string
	exportOutput    string
	exportRender    bool
	exportSummaries bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your worklog as markdown, JSON or YAML",
	Long: `Export the work days in a date range together with any stored summaries.

Stored summaries are included only for days whose commits have not changed since
the summary was generated.

Examples:
  farmer export -r last-week                  # Writes worklog_<since>_<until>.md
  farmer export -f json -o week.json
  farmer export -r this-week --render         # Render markdown in the terminal
  farmer export --since 2024-01-01 -o -       # Write to stdout`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportRange.register(exportCmd, "this-week")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Output format: md, json, yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path, - for stdout (default: worklog_<since>_<until>.<format>)")
	exportCmd.Flags().BoolVar(&exportRender, "render", false, "Render markdown in the terminal instead of writing a file")
	exportCmd.Flags().BoolVar(&exportSummaries, "summaries", true, "Include stored summaries")
}

func runExport(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgHiGreen)
	dimColor := color.New(color.FgHiBlack)

	format, err := worklog.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	if exportRender && format != worklog.FormatMarkdown {
		return fmt.Errorf("--render only works with markdown output")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	days, r, res, err := a.timeline(cmd.Context(), exportRange)
	if err != nil {
		return err
	}
	printFailures(res.Failures)

	var summaries map[string]string
	if exportSummaries && len(days) > 0 {
		st, err := a.summaries()
		if err != nil {
			return err
		}
		summaries, err = st.ForDays(days)
		if err != nil {
			return err
		}
	}

	rep := worklog.NewReport(a.author(), days, summaries, r, time.Now())

	if exportRender {
		return renderMarkdown(rep.Markdown())
	}

	var buf bytes.Buffer
	if err := rep.Write(&buf, format); err != nil {
		return fmt.Errorf("failed to render worklog: %w", err)
	}

	if exportOutput == "-" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	path := exportOutput
	if path == "" {
		path = defaultExportName(r, format, time.Now())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write worklog: %w", err)
	}

	fmt.Println()
	successColor.Printf("  Worklog written to %s\n", path)
	dimColor.Printf("  %d days, %d with summaries\n\n", len(days), len(summaries))
	return nil
}

func defaultExportName(r worklog.DateRange, format worklog.Format, now time.Time) string {
	since, until := r.Since, r.Until
	if since == "" {
		since = "start"
	}
	if until == "" {
		until = now.Format("2006-01-02")
	}
	return fmt.Sprintf("worklog_%s_%s.%s", since, until, format)
}

func renderMarkdown(md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}
