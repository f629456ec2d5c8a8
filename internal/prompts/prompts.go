package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ishaan812/farmer/internal/constants"
)

//go:embed workday_summary.md
var workdaySummaryPromptTemplate string

var verbosityInstructions = map[constants.Verbosity]string{
	constants.VerbosityConcise:  "in exactly ONE sentence written in FIRST PERSON.",
	constants.VerbosityNormal:   "in 2-3 sentences written in FIRST PERSON.",
	constants.VerbosityDetailed: "in 4-5 sentences written in FIRST PERSON, naming the specific features, fixes and files involved where the commits show them.",
}

const deepAnalysisNote = "\n\nSome commits include excerpts of their diffs (lines starting with + were added, - were removed). " +
	"Use them to ground the summary in the specific changes that were made."

// WorkdaySummaryInput holds the parts of a work day summary prompt.
type WorkdaySummaryInput struct {
	Commits      string // formatted commit block
	Verbosity    constants.Verbosity
	CustomPrompt string
	DeepAnalysis bool
}

// VerbosityInstruction returns the length instruction for v; unknown values use normal.
func VerbosityInstruction(v constants.Verbosity) string {
	if s, ok := verbosityInstructions[v]; ok {
		return s
	}
	return verbosityInstructions[constants.VerbosityNormal]
}

func BuildWorkdaySummaryPrompt(in WorkdaySummaryInput) string {
	var deep string
	if in.DeepAnalysis {
		deep = deepAnalysisNote
	}
	var custom string
	if c := strings.TrimSpace(in.CustomPrompt); c != "" {
		custom = "\n\nAdditional instructions: " + c
	}
	return fmt.Sprintf(strings.TrimSpace(workdaySummaryPromptTemplate),
		VerbosityInstruction(in.Verbosity), deep, in.Commits, custom)
}
