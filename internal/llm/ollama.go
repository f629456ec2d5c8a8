package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ishaan812/farmer/internal/logger"
)

type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
	log     logger.Logger
}

func NewOllamaClient(baseURL, model string, client *http.Client, log logger.Logger) *OllamaClient {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  client,
		log:     log,
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debug("ollama response", "status", resp.StatusCode, "body", logger.Safe(string(body), 600))

	var result ollamaGenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.Error != "" {
		return "", &BackendError{Backend: "ollama", Status: resp.StatusCode, Detail: result.Error}
	}

	return strings.TrimSpace(result.Response), nil
}

// Stream reads the newline-delimited JSON body, forwarding each response fragment.
func (c *OllamaClient) Stream(ctx context.Context, prompt string, onChunk ChunkFunc) (string, error) {
	resp, err := c.generate(ctx, prompt, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var part ollamaGenerateResponse
		if err := json.Unmarshal(line, &part); err != nil {
			c.log.Warn("skipping malformed ollama stream line", "line", logger.Safe(string(line), 200))
			continue
		}
		if part.Error != "" {
			return "", &BackendError{Backend: "ollama", Status: resp.StatusCode, Detail: part.Error}
		}
		if part.Response != "" {
			full.WriteString(part.Response)
			if onChunk != nil {
				onChunk(part.Response)
			}
		}
		if part.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to read stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.log.Debug("ollama stream finished", "chars", full.Len())
	return strings.TrimSpace(full.String()), nil
}

func (c *OllamaClient) generate(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBody := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: stream,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("ollama request", "url", c.baseURL+"/api/generate", "model", c.model, "stream", stream, "prompt_len", len(prompt))
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, &BackendError{Backend: "ollama", Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
