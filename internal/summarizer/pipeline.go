package summarizer

import (
	"context"
	"fmt"

	"github.com/ishaan812/farmer/internal/config"
	"github.com/ishaan812/farmer/internal/deepanalysis"
	"github.com/ishaan812/farmer/internal/git"
	"github.com/ishaan812/farmer/internal/llm"
	"github.com/ishaan812/farmer/internal/logger"
)

// Dispatcher sends prompts to AI backends.
type Dispatcher interface {
	Validate(p llm.Provider) error
	SummarizeAsync(ctx context.Context, p llm.Provider, commits []string, opts llm.PromptOptions) (*llm.Handle, error)
	SummarizeStream(ctx context.Context, p llm.Provider, commits []string, opts llm.PromptOptions, onChunk llm.ChunkFunc) (*llm.Handle, error)
}

// DiffFetcher retrieves commit diffs for deep analysis.
type DiffFetcher interface {
	Fetch(ctx context.Context, commits []git.Commit, opts git.DiffOptions) (map[string][]git.FileDiff, error)
}

// Request is one work day summary request.
type Request struct {
	Commits      []git.Commit
	AI           config.AIConfig
	DeepAnalysis config.DeepAnalysisSettings
}

func (r Request) promptOptions() llm.PromptOptions {
	return llm.PromptOptions{
		Verbosity:    r.AI.Verbosity,
		CustomPrompt: r.AI.CustomPrompt,
		DeepAnalysis: r.DeepAnalysis.Enabled,
	}
}

func (r Request) diffOptions() git.DiffOptions {
	return git.DiffOptions{
		MaxFileSizeKB: r.DeepAnalysis.MaxFileSizeKB,
		MaxFiles:      r.DeepAnalysis.MaxFilesPerCommit,
	}
}

// Pipeline validates the AI configuration, optionally enriches commits with diffs,
// formats them and dispatches the summary request.
type Pipeline struct {
	dispatcher Dispatcher
	fetcher    DiffFetcher
	log        logger.Logger
}

func New(dispatcher Dispatcher, fetcher DiffFetcher, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{dispatcher: dispatcher, fetcher: fetcher, log: log}
}

func (p *Pipeline) provider(req Request) (llm.Provider, error) {
	provider, err := req.AI.Selected()
	if err != nil {
		return llm.Provider{}, err
	}
	if err := p.dispatcher.Validate(provider); err != nil {
		return llm.Provider{}, err
	}
	return provider, nil
}

// Summarize returns the finished summary. If fetching diffs fails the plain commit
// messages are used instead.
func (p *Pipeline) Summarize(ctx context.Context, req Request) (string, error) {
	h, err := p.Start(ctx, req)
	if err != nil {
		return "", err
	}
	return h.Wait()
}

// Start begins a buffered summary. Configuration errors are returned immediately.
// Cancelling the handle suppresses the result.
func (p *Pipeline) Start(ctx context.Context, req Request) (*llm.Handle, error) {
	provider, err := p.provider(req)
	if err != nil {
		return nil, err
	}

	return llm.Start(ctx, func(ctx context.Context) (string, error) {
		diffs, err := p.fetchDiffs(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			p.log.Warn("failed to fetch diffs, using plain messages", "error", err)
			diffs = nil
		}

		lines := deepanalysis.FormatCommits(deepanalysis.Subjects(req.Commits), req.Commits, diffs)
		inner, err := p.dispatcher.SummarizeAsync(ctx, provider, lines, req.promptOptions())
		if err != nil {
			return "", err
		}
		return inner.Wait()
	}), nil
}

// Stream starts a streaming summary. Configuration errors are returned immediately.
// A failed diff fetch fails the generation.
func (p *Pipeline) Stream(ctx context.Context, req Request, onChunk llm.ChunkFunc) (*llm.Handle, error) {
	provider, err := p.provider(req)
	if err != nil {
		return nil, err
	}

	return llm.Start(ctx, func(ctx context.Context) (string, error) {
		diffs, err := p.fetchDiffs(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("deep analysis failed: %w; try disabling deep analysis in settings", err)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		lines := deepanalysis.FormatCommits(deepanalysis.Subjects(req.Commits), req.Commits, diffs)
		inner, err := p.dispatcher.SummarizeStream(ctx, provider, lines, req.promptOptions(), onChunk)
		if err != nil {
			return "", err
		}
		return inner.Wait()
	}), nil
}

func (p *Pipeline) fetchDiffs(ctx context.Context, req Request) (map[string][]git.FileDiff, error) {
	if !req.DeepAnalysis.Enabled || len(req.Commits) == 0 || p.fetcher == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.log.Debug("deep analysis enabled, fetching diffs", "commits", len(req.Commits))
	return p.fetcher.Fetch(ctx, req.Commits, req.diffOptions())
}
