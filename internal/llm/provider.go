package llm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ishaan812/farmer/internal/constants"
)

// ProviderConfig holds the backend-specific settings of a provider.
type ProviderConfig struct {
	Command string `json:"command,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
	Model   string `json:"model,omitempty"`
}

// Provider is a configured AI backend.
type Provider struct {
	ID      string                 `json:"id"`
	Kind    constants.ProviderKind `json:"type"`
	Name    string                 `json:"name"`
	Enabled bool                   `json:"enabled"`
	Config  ProviderConfig         `json:"config"`
}

// NewProvider builds a provider of the given kind with a fresh ID and the kind's defaults filled in.
func NewProvider(kind constants.ProviderKind, name string) Provider {
	if name == "" {
		if info := constants.GetProviderInfo(kind); info != nil {
			name = info.Name
		} else {
			name = string(kind)
		}
	}
	return Provider{
		ID:     uuid.New().String(),
		Kind:   kind,
		Name:   name,
		Config: defaultProviderConfig(kind),
	}
}

func defaultProviderConfig(kind constants.ProviderKind) ProviderConfig {
	switch kind {
	case constants.KindClaudeCode:
		return ProviderConfig{Command: constants.DefaultClaudeCommand}
	case constants.KindOpenCode:
		return ProviderConfig{Command: constants.DefaultOpenCodeCommand}
	case constants.KindOllama:
		return ProviderConfig{BaseURL: constants.DefaultOllamaBaseURL, Model: constants.DefaultOllamaModel}
	case constants.KindOpenAI:
		return ProviderConfig{Model: constants.DefaultOpenAIModel}
	case constants.KindGemini:
		return ProviderConfig{Model: constants.DefaultGeminiModel}
	default:
		return ProviderConfig{}
	}
}

// ResolveProvider returns the selected provider, checking that it exists and is enabled.
func ResolveProvider(providers []Provider, selectedID string) (Provider, error) {
	if selectedID == "" {
		return Provider{}, ErrNoProviderSelected
	}
	for _, p := range providers {
		if p.ID != selectedID {
			continue
		}
		if !p.Enabled {
			return Provider{}, fmt.Errorf("%w: %s", ErrProviderDisabled, p.Name)
		}
		return p, nil
	}
	return Provider{}, fmt.Errorf("%w: %s", ErrProviderNotFound, selectedID)
}
