package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/logger"
)

// Discoverer probes the host for AI backends. Probe failures mean "not available".
type Discoverer struct {
	lookPath   func(file string) (string, error)
	httpClient *http.Client
	ollamaURL  string
	log        logger.Logger
}

type DiscoveryOption func(*Discoverer)

func WithLookPath(fn func(string) (string, error)) DiscoveryOption {
	return func(d *Discoverer) { d.lookPath = fn }
}

func WithOllamaURL(url string) DiscoveryOption {
	return func(d *Discoverer) { d.ollamaURL = strings.TrimRight(url, "/") }
}

func WithDiscoveryHTTPClient(c *http.Client) DiscoveryOption {
	return func(d *Discoverer) { d.httpClient = c }
}

func NewDiscoverer(log logger.Logger, opts ...DiscoveryOption) *Discoverer {
	if log == nil {
		log = logger.Nop()
	}
	d := &Discoverer{
		lookPath:   exec.LookPath,
		httpClient: &http.Client{Timeout: 3 * time.Second},
		ollamaURL:  constants.DefaultOllamaBaseURL,
		log:        log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover returns the providers found on this machine, all disabled.
func (d *Discoverer) Discover(ctx context.Context) []Provider {
	var found []Provider

	if d.hasCommand(constants.DefaultClaudeCommand) {
		found = append(found, Provider{
			ID:     "claude-code",
			Kind:   constants.KindClaudeCode,
			Name:   "Claude Code",
			Config: ProviderConfig{Command: constants.DefaultClaudeCommand},
		})
	}
	if d.hasCommand(constants.DefaultOpenCodeCommand) {
		found = append(found, Provider{
			ID:     "opencode",
			Kind:   constants.KindOpenCode,
			Name:   "OpenCode",
			Config: ProviderConfig{Command: constants.DefaultOpenCodeCommand},
		})
	}
	if d.hasOllamaModels(ctx) {
		found = append(found, Provider{
			ID:   "ollama",
			Kind: constants.KindOllama,
			Name: "Ollama",
			Config: ProviderConfig{
				BaseURL: d.ollamaURL,
				Model:   constants.DefaultOllamaModel,
			},
		})
	}

	d.log.Debug("provider discovery finished", "found", len(found))
	return found
}

func (d *Discoverer) hasCommand(name string) bool {
	_, err := d.lookPath(name)
	if err != nil {
		d.log.Debug("command not found", "command", name)
		return false
	}
	return true
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (d *Discoverer) hasOllamaModels(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", d.ollamaURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.log.Debug("ollama not reachable", "url", d.ollamaURL, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	return len(tags.Models) > 0
}
