package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/logger"
	"github.com/ishaan812/farmer/internal/prompts"
)

// PromptOptions are the prompt parameters of one summarization request.
type PromptOptions struct {
	Verbosity    constants.Verbosity
	CustomPrompt string
	DeepAnalysis bool
}

// Dispatcher routes summarization requests to the client for a provider's kind.
type Dispatcher struct {
	log       logger.Logger
	opts      []Option
	newClient func(Provider, ...Option) (Client, error)
}

func NewDispatcher(log logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{
		log:       log,
		opts:      append([]Option{WithLogger(log)}, opts...),
		newClient: NewClient,
	}
}

// BuildPrompt joins the formatted commit entries and wraps them in the summary instructions.
func BuildPrompt(commits []string, opts PromptOptions) string {
	return prompts.BuildWorkdaySummaryPrompt(prompts.WorkdaySummaryInput{
		Commits:      strings.Join(commits, "\n"),
		Verbosity:    opts.Verbosity,
		CustomPrompt: opts.CustomPrompt,
		DeepAnalysis: opts.DeepAnalysis,
	})
}

func (d *Dispatcher) prepare(p Provider, commits []string, opts PromptOptions) (Client, string, error) {
	if !p.Enabled {
		return nil, "", fmt.Errorf("%w: %s", ErrProviderDisabled, p.Name)
	}
	client, err := d.newClient(p, d.opts...)
	if err != nil {
		return nil, "", err
	}
	prompt := BuildPrompt(commits, opts)
	d.log.Debug("dispatching summary", "provider", p.Name, "kind", string(p.Kind),
		"commits", len(commits), "verbosity", string(opts.Verbosity), "prompt_len", len(prompt))
	return client, prompt, nil
}

// Validate reports the configuration errors a request to p would fail with, without
// contacting the backend.
func (d *Dispatcher) Validate(p Provider) error {
	_, _, err := d.prepare(p, nil, PromptOptions{})
	return err
}

// Summarize waits for the full summary. A cancelled ctx yields ("", nil).
func (d *Dispatcher) Summarize(ctx context.Context, p Provider, commits []string, opts PromptOptions) (string, error) {
	h, err := d.SummarizeAsync(ctx, p, commits, opts)
	if err != nil {
		return "", err
	}
	return h.Wait()
}

// SummarizeAsync runs a buffered summary behind a Handle. For CLI backends Cancel only
// suppresses the result; the process runs to completion.
func (d *Dispatcher) SummarizeAsync(ctx context.Context, p Provider, commits []string, opts PromptOptions) (*Handle, error) {
	client, prompt, err := d.prepare(p, commits, opts)
	if err != nil {
		return nil, err
	}
	return Start(ctx, func(ctx context.Context) (string, error) {
		text, err := client.Complete(ctx, prompt)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("summary failed", "provider", p.Name, "error", err)
		}
		return text, err
	}), nil
}

// SummarizeStream starts a streaming summary. Configuration errors are returned
// immediately; backend errors surface from Handle.Wait.
func (d *Dispatcher) SummarizeStream(ctx context.Context, p Provider, commits []string, opts PromptOptions, onChunk ChunkFunc) (*Handle, error) {
	client, prompt, err := d.prepare(p, commits, opts)
	if err != nil {
		return nil, err
	}
	return Start(ctx, func(ctx context.Context) (string, error) {
		text, err := client.Stream(ctx, prompt, onChunk)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.log.Error("streaming summary failed", "provider", p.Name, "error", err)
		}
		return text, err
	}), nil
}
