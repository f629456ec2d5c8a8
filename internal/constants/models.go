package constants

import "time"

// Backend defaults
const (
	DefaultClaudeCommand   = "claude"
	DefaultOpenCodeCommand = "opencode"

	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "qwen2.5-coder:3b"

	OpenAIChatCompletionsURL = "https://api.openai.com/v1"
	DefaultOpenAIModel       = "gpt-4o-mini"
	OpenAITemperature        = 0.7
	OpenAIMaxTokens          = 300

	DefaultGeminiModel = "gemini-2.5-flash"
)

// Deep analysis and history defaults
const (
	DefaultMaxFileSizeKB     = 50
	DefaultMaxFilesPerCommit = 20
	DiffRetryCount           = 2
	DiffRetryDelay           = 500 * time.Millisecond

	HistoryWindowDays = 90
	MaxRepoHistory    = 10
)

// Verbosity controls the requested summary length.
type Verbosity string

const (
	VerbosityConcise  Verbosity = "concise"
	VerbosityNormal   Verbosity = "normal"
	VerbosityDetailed Verbosity = "detailed"
)

// ParseVerbosity maps unknown values to VerbosityNormal.
func ParseVerbosity(s string) Verbosity {
	switch Verbosity(s) {
	case VerbosityConcise, VerbosityDetailed:
		return Verbosity(s)
	default:
		return VerbosityNormal
	}
}

// ModelOption represents a selectable model with metadata for CLI display
type ModelOption struct {
	Model       string
	Description string
}

// GetModels returns suggested model options for a backend kind
func GetModels(kind ProviderKind) []ModelOption {
	return models[kind]
}

// DefaultModel returns the model used when a provider has none configured
func DefaultModel(kind ProviderKind) string {
	switch kind {
	case KindOllama:
		return DefaultOllamaModel
	case KindOpenAI:
		return DefaultOpenAIModel
	case KindGemini:
		return DefaultGeminiModel
	default:
		return ""
	}
}

var models = map[ProviderKind][]ModelOption{
	KindOllama: {
		{Model: "qwen2.5-coder:3b", Description: "Qwen 2.5 Coder 3B (default, fast)"},
		{Model: "llama3.1", Description: "Meta Llama 3.1"},
		{Model: "llama3.2", Description: "Meta Llama 3.2 (lightweight)"},
		{Model: "gemma3", Description: "Gemma 3"},
		{Model: "qwen3", Description: "Qwen3"},
	},
	KindOpenAI: {
		{Model: "gpt-4o-mini", Description: "GPT-4o mini (default, cheap)"},
		{Model: "gpt-4o", Description: "GPT-4o"},
		{Model: "gpt-4.1-mini", Description: "GPT-4.1 mini"},
	},
	KindGemini: {
		{Model: "gemini-2.5-flash", Description: "Gemini 2.5 Flash (default)"},
		{Model: "gemini-2.5-pro", Description: "Gemini 2.5 Pro"},
	},
}
