package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/logger"
)

// ChunkFunc receives streamed text fragments in arrival order.
type ChunkFunc func(chunk string)

// Client turns a prompt into summary text.
type Client interface {
	// Complete waits for the full response.
	Complete(ctx context.Context, prompt string) (string, error)
	// Stream forwards fragments to onChunk as they arrive and returns the concatenated text.
	Stream(ctx context.Context, prompt string, onChunk ChunkFunc) (string, error)
}

type clientOptions struct {
	httpClient *http.Client
	log        logger.Logger
	getenv     func(string) string
}

// Option configures clients built by NewClient.
type Option func(*clientOptions)

// WithHTTPClient sets the HTTP client used by HTTP backends.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithGetenv overrides the environment lookup used for API key fallback.
func WithGetenv(fn func(string) string) Option {
	return func(o *clientOptions) { o.getenv = fn }
}

func buildOptions(opts []Option) *clientOptions {
	o := &clientOptions{
		httpClient: &http.Client{},
		log:        logger.Nop(),
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	return o
}

// NewClient creates the client for a provider. Missing API keys are reported here,
// before any network call.
func NewClient(p Provider, opts ...Option) (Client, error) {
	o := buildOptions(opts)
	cfg := p.Config

	switch p.Kind {
	case constants.KindClaudeCode:
		command := cfg.Command
		if command == "" {
			command = constants.DefaultClaudeCommand
		}
		return NewClaudeCodeClient(command, o.log), nil
	case constants.KindOpenCode:
		command := cfg.Command
		if command == "" {
			command = constants.DefaultOpenCodeCommand
		}
		return NewOpenCodeClient(command, o.log), nil
	case constants.KindOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = constants.DefaultOllamaBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = constants.DefaultOllamaModel
		}
		return NewOllamaClient(baseURL, model, o.httpClient, o.log), nil
	case constants.KindOpenAI:
		apiKey := resolveAPIKey(p, o.getenv)
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI %w", ErrMissingAPIKey)
		}
		model := cfg.Model
		if model == "" {
			model = constants.DefaultOpenAIModel
		}
		return NewOpenAIClient(cfg.BaseURL, apiKey, model, o.httpClient, o.log), nil
	case constants.KindGemini:
		apiKey := resolveAPIKey(p, o.getenv)
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini %w", ErrMissingAPIKey)
		}
		model := cfg.Model
		if model == "" {
			model = constants.DefaultGeminiModel
		}
		return NewGeminiClient(cfg.BaseURL, apiKey, model, o.httpClient, o.log), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p.Kind)
	}
}

func resolveAPIKey(p Provider, getenv func(string) string) string {
	if p.Config.APIKey != "" {
		return p.Config.APIKey
	}
	if env := constants.APIKeyEnv(p.Kind); env != "" {
		return getenv(env)
	}
	return ""
}
