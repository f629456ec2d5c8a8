package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/logger"
)

// OpenAIClient talks to an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

func NewOpenAIClient(baseURL, apiKey, model string, httpClient *http.Client, log logger.Logger) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
		log:    log,
	}
}

func (c *OpenAIClient) request(prompt string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: constants.OpenAITemperature,
		MaxTokens:   constants.OpenAIMaxTokens,
		Stream:      stream,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.log.Debug("openai request", "model", c.model, "stream", false, "prompt_len", len(prompt))
	resp, err := c.client.CreateChatCompletion(ctx, c.request(prompt, false))
	if err != nil {
		return "", c.wrapError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	content := resp.Choices[0].Message.Content
	c.log.Debug("openai response", "content", logger.Safe(content, 600))
	return strings.TrimSpace(content), nil
}

// Stream consumes the server-sent event stream; each delta is forwarded as it arrives.
func (c *OpenAIClient) Stream(ctx context.Context, prompt string, onChunk ChunkFunc) (string, error) {
	c.log.Debug("openai request", "model", c.model, "stream", true, "prompt_len", len(prompt))
	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(prompt, true))
	if err != nil {
		return "", c.wrapError(ctx, err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", c.wrapError(ctx, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			full.WriteString(delta)
			if onChunk != nil {
				onChunk(delta)
			}
		}
	}

	c.log.Debug("openai stream finished", "chars", full.Len())
	return strings.TrimSpace(full.String()), nil
}

func (c *OpenAIClient) wrapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{Backend: "openai", Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &BackendError{Backend: "openai", Status: reqErr.HTTPStatusCode, Detail: reqErr.Error()}
	}
	return fmt.Errorf("OpenAI API error: %w", err)
}
