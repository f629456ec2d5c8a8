package constants

import "strings"

// ProviderKind identifies which backend implementation serves a provider.
type ProviderKind string

// AI backend kinds. The string values are what ends up in settings.json.
const (
	KindClaudeCode ProviderKind = "claude-code" // CLI tool, prompt passed with -p
	KindOpenCode   ProviderKind = "opencode"    // CLI tool, prompt passed to the run subcommand
	KindOllama     ProviderKind = "openapi"     // local HTTP generate endpoint
	KindOpenAI     ProviderKind = "openai"      // hosted chat-completions API
	KindGemini     ProviderKind = "gemini"      // hosted Gemini API
)

// ProviderInfo contains display information about a backend kind
type ProviderInfo struct {
	Kind        ProviderKind
	Name        string
	Description string
	IsCLI       bool
	NeedsAPIKey bool
}

// AllProviders lists every supported backend kind in display order
var AllProviders = []ProviderInfo{
	{
		Kind:        KindClaudeCode,
		Name:        "Claude Code",
		Description: "Local claude CLI, non-interactive print mode",
		IsCLI:       true,
	},
	{
		Kind:        KindOpenCode,
		Name:        "OpenCode",
		Description: "Local opencode CLI, run subcommand",
		IsCLI:       true,
	},
	{
		Kind:        KindOllama,
		Name:        "Ollama",
		Description: "Free, local, private — any installed model",
	},
	{
		Kind:        KindOpenAI,
		Name:        "OpenAI",
		Description: "Hosted chat completions (gpt-4o-mini by default)",
		NeedsAPIKey: true,
	},
	{
		Kind:        KindGemini,
		Name:        "Gemini",
		Description: "Google Gemini — Flash, Pro",
		NeedsAPIKey: true,
	},
}

// GetProviderInfo returns information about a backend kind, or nil when unknown
func GetProviderInfo(kind ProviderKind) *ProviderInfo {
	for _, p := range AllProviders {
		if strings.EqualFold(string(p.Kind), string(kind)) {
			info := p
			return &info
		}
	}
	return nil
}

// ParseProviderKind accepts a kind value or a display name ("ollama" maps to the HTTP generate kind).
func ParseProviderKind(s string) (ProviderKind, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "ollama" {
		return KindOllama, true
	}
	for _, p := range AllProviders {
		if string(p.Kind) == s || strings.ToLower(p.Name) == s {
			return p.Kind, true
		}
	}
	return "", false
}

// ProviderDescription returns a human-readable description of a backend kind
func ProviderDescription(kind ProviderKind) string {
	switch kind {
	case KindClaudeCode:
		return "Claude Code (local CLI)"
	case KindOpenCode:
		return "OpenCode (local CLI)"
	case KindOllama:
		return "Ollama (local, free)"
	case KindOpenAI:
		return "OpenAI (hosted API)"
	case KindGemini:
		return "Google Gemini (hosted API)"
	default:
		return string(kind)
	}
}

// APIKeyEnv returns the environment variable consulted when a hosted provider has no key configured.
func APIKeyEnv(kind ProviderKind) string {
	switch kind {
	case KindOpenAI:
		return "OPENAI_API_KEY"
	case KindGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}
