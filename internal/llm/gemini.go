package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/ishaan812/farmer/internal/logger"
)

// GeminiClient uses Google's Gemini Go SDK.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        logger.Logger

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiClient returns a client whose SDK client is created lazily on first use.
// An empty baseURL uses the SDK default endpoint.
func NewGeminiClient(baseURL, apiKey, model string, httpClient *http.Client, log logger.Logger) *GeminiClient {
	if log == nil {
		log = logger.Nop()
	}
	return &GeminiClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *GeminiClient) ensureClient(ctx context.Context) error {
	c.once.Do(func() {
		cfg := &genai.ClientConfig{
			Backend:    genai.BackendGeminiAPI,
			APIKey:     c.apiKey,
			HTTPClient: c.httpClient,
		}
		if c.baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
		}
		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			c.initErr = fmt.Errorf("failed to create Gemini client: %w", err)
			return
		}
		c.client = client
	})
	return c.initErr
}

func userContent(prompt string) []*genai.Content {
	return []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{genai.NewPartFromText(prompt)},
		},
	}
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.ensureClient(ctx); err != nil {
		return "", err
	}

	c.log.Debug("gemini request", "model", c.model, "stream", false, "prompt_len", len(prompt))
	result, err := c.client.Models.GenerateContent(ctx, c.model, userContent(prompt), nil)
	if err != nil {
		return "", c.wrapError(ctx, err)
	}

	text := result.Text()
	c.log.Debug("gemini response", "content", logger.Safe(text, 600))
	return strings.TrimSpace(text), nil
}

func (c *GeminiClient) Stream(ctx context.Context, prompt string, onChunk ChunkFunc) (string, error) {
	if err := c.ensureClient(ctx); err != nil {
		return "", err
	}

	c.log.Debug("gemini request", "model", c.model, "stream", true, "prompt_len", len(prompt))
	var full strings.Builder
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, userContent(prompt), nil) {
		if err != nil {
			return "", c.wrapError(ctx, err)
		}
		if chunk := resp.Text(); chunk != "" {
			full.WriteString(chunk)
			if onChunk != nil {
				onChunk(chunk)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(full.String()), nil
}

func (c *GeminiClient) wrapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{Backend: "gemini", Status: apiErr.Code, Detail: apiErr.Message}
	}
	return fmt.Errorf("Gemini API error: %w", err)
}
