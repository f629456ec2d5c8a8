package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ishaan812/farmer/internal/constants"
	"github.com/ishaan812/farmer/internal/llm"
)

// WorkSchedule describes the user's working week and git identities.
type WorkSchedule struct {
	WorkingDays        []string `json:"workingDays"`
	GitAuthors         []string `json:"gitAuthors"`
	WeekendAttribution string   `json:"weekendAttribution"` // "friday" or "monday"
}

type AIConfig struct {
	Providers        []llm.Provider      `json:"providers"`
	SelectedProvider string              `json:"selectedProvider,omitempty"`
	CustomPrompt     string              `json:"customPrompt,omitempty"`
	Verbosity        constants.Verbosity `json:"verbosity"`
}

type CopySettings struct {
	IncludeCommitLinks bool `json:"includeCommitLinks"`
	IncludeDate        bool `json:"includeDate"`
}

type DeepAnalysisSettings struct {
	Enabled           bool `json:"enabled"`
	MaxFileSizeKB     int  `json:"maxFileSizeKB"`
	MaxFilesPerCommit int  `json:"maxFilesPerCommit"`
}

// Settings is the persisted application state.
type Settings struct {
	WorkSchedule         WorkSchedule         `json:"workSchedule"`
	AIConfig             AIConfig             `json:"aiConfig"`
	RepoPath             string               `json:"repoPath,omitempty"`
	RepoHistory          []string             `json:"repoHistory"`
	ActiveRepos          []string             `json:"activeRepos"`
	FilterByGitAuthors   bool                 `json:"filterByGitAuthors"`
	CopySettings         CopySettings         `json:"copySettings"`
	DeepAnalysisSettings DeepAnalysisSettings `json:"deepAnalysisSettings"`
}

// Defaults returns the settings used when nothing has been saved yet.
func Defaults() *Settings {
	return &Settings{
		WorkSchedule: WorkSchedule{
			WorkingDays:        []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			GitAuthors:         []string{},
			WeekendAttribution: "friday",
		},
		AIConfig: AIConfig{
			Providers: []llm.Provider{},
			Verbosity: constants.VerbosityNormal,
		},
		RepoHistory:        []string{},
		ActiveRepos:        []string{},
		FilterByGitAuthors: true,
		CopySettings: CopySettings{
			IncludeCommitLinks: true,
			IncludeDate:        true,
		},
		DeepAnalysisSettings: DeepAnalysisSettings{
			MaxFileSizeKB:     constants.DefaultMaxFileSizeKB,
			MaxFilesPerCommit: constants.DefaultMaxFilesPerCommit,
		},
	}
}

// GetFarmerDir returns the base directory for settings and data.
func GetFarmerDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".farmer"
	}
	return filepath.Join(homeDir, ".farmer")
}

// DefaultPath is the settings file location.
func DefaultPath() string {
	return filepath.Join(GetFarmerDir(), "settings.json")
}

// Store loads and saves settings.
type Store interface {
	Load() (*Settings, error)
	Save(*Settings) error
}

// FileStore keeps settings in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store at path, or at DefaultPath when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields defaults. Fields that are missing or
// malformed fall back to their defaults individually. If the file is not a JSON object at all,
// the defaults are returned together with the parse error.
func (s *FileStore) Load() (*Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return Parse(data)
}

func (s *FileStore) Save(settings *Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// Parse decodes settings JSON leniently; see FileStore.Load.
func Parse(data []byte) (*Settings, error) {
	settings := Defaults()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return settings, fmt.Errorf("failed to parse settings: %w", err)
	}

	decodeField(fields, "workSchedule", &settings.WorkSchedule)
	decodeField(fields, "aiConfig", &settings.AIConfig)
	decodeField(fields, "repoPath", &settings.RepoPath)
	decodeField(fields, "repoHistory", &settings.RepoHistory)
	decodeField(fields, "activeRepos", &settings.ActiveRepos)
	decodeField(fields, "filterByGitAuthors", &settings.FilterByGitAuthors)
	decodeField(fields, "copySettings", &settings.CopySettings)
	decodeField(fields, "deepAnalysisSettings", &settings.DeepAnalysisSettings)

	settings.normalize()
	return settings, nil
}

// decodeField unmarshals fields[key] into dst, leaving dst untouched when the value is
// absent, null or of the wrong shape.
func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return
	}
	tmp := *dst
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return
	}
	*dst = tmp
}

func (s *Settings) normalize() {
	def := Defaults()
	if s.WorkSchedule.WorkingDays == nil {
		s.WorkSchedule.WorkingDays = def.WorkSchedule.WorkingDays
	}
	if s.WorkSchedule.GitAuthors == nil {
		s.WorkSchedule.GitAuthors = []string{}
	}
	if s.WorkSchedule.WeekendAttribution != "friday" && s.WorkSchedule.WeekendAttribution != "monday" {
		s.WorkSchedule.WeekendAttribution = def.WorkSchedule.WeekendAttribution
	}
	if s.AIConfig.Providers == nil {
		s.AIConfig.Providers = []llm.Provider{}
	}
	s.AIConfig.Verbosity = constants.ParseVerbosity(string(s.AIConfig.Verbosity))
	if s.RepoHistory == nil {
		s.RepoHistory = []string{}
	}
	if s.ActiveRepos == nil {
		s.ActiveRepos = []string{}
	}
	if s.DeepAnalysisSettings.MaxFileSizeKB <= 0 {
		s.DeepAnalysisSettings.MaxFileSizeKB = def.DeepAnalysisSettings.MaxFileSizeKB
	}
	if s.DeepAnalysisSettings.MaxFilesPerCommit <= 0 {
		s.DeepAnalysisSettings.MaxFilesPerCommit = def.DeepAnalysisSettings.MaxFilesPerCommit
	}
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	return NewFileStore("").Load()
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return NewFileStore("").Save(s)
}
