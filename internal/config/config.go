// Package config handles Faro configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/faro/config.yaml, /etc/faro/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "faro", "config.yaml"))
	}

	paths = append(paths, "/etc/faro/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Faro configuration.
type Config struct {
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Notion     NotionConfig     `yaml:"notion"`
	IMAP       IMAPConfig       `yaml:"imap"`
	CalDAV     CalDAVConfig     `yaml:"caldav"`
	Editorial  EditorialConfig  `yaml:"editorial"`
	Perplexity PerplexityConfig `yaml:"perplexity"`
	Groq       GroqConfig       `yaml:"groq"`
	Agent      AgentConfig      `yaml:"agent"`
	Branches   []BranchConfig   `yaml:"branches"`
	DataDir    string           `yaml:"data_dir"`
	Timezone   string           `yaml:"timezone"`
	LogLevel   string           `yaml:"log_level"`
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// TelegramConfig defines the Telegram bot front end.
type TelegramConfig struct {
	Token string `yaml:"token"`
	// ChatID is the chat that receives scheduled briefings. Empty
	// disables the scheduled jobs; interactive chat still works.
	ChatID string `yaml:"chat_id"`
	// BriefingHour is the local hour (0-23) for the daily briefing.
	BriefingHour int `yaml:"briefing_hour"`
	// SummaryHour is the local hour for the Friday weekly summary.
	SummaryHour int `yaml:"summary_hour"`
}

// NotionConfig defines the Notion integration and its database IDs.
type NotionConfig struct {
	Token         string `yaml:"token"`
	TasksDBID     string `yaml:"tasks_db_id"`
	NotesDBID     string `yaml:"notes_db_id"`
	TimeLogDBID   string `yaml:"time_log_db_id"`
	DocsDBID      string `yaml:"docs_db_id"`
	ContactsDBID  string `yaml:"contacts_db_id"`
}

// IMAPConfig defines the mail account Faro reads.
type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

// CalDAVConfig defines the calendar server connection.
type CalDAVConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Calendar is the calendar path on the server. Empty selects the
	// first calendar the server advertises.
	Calendar string `yaml:"calendar"`
}

// EditorialConfig points at the published-CSV export of the editorial
// review sheet.
type EditorialConfig struct {
	CSVURL string `yaml:"csv_url"`
}

// PerplexityConfig defines web search settings.
type PerplexityConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// GroqConfig defines voice transcription settings.
type GroqConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// AgentConfig tunes the orchestration loop.
type AgentConfig struct {
	// MaxIterations bounds model/tool round-trips within one turn.
	MaxIterations int `yaml:"max_iterations"`
	// RetryAttempts is the model-call attempt ceiling for transient errors.
	RetryAttempts int `yaml:"retry_attempts"`
	// RetryDelaySec is the fixed delay between model-call retries.
	RetryDelaySec int `yaml:"retry_delay_sec"`
}

// BranchConfig defines a work branch with its weekly hour target.
type BranchConfig struct {
	Name        string  `yaml:"name"`
	WeeklyHours float64 `yaml:"weekly_hours"`
	Emoji       string  `yaml:"emoji"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Telegram: TelegramConfig{
			BriefingHour: 7,
			SummaryHour:  18,
		},
		Groq: GroqConfig{
			Model:    "whisper-large-v3",
			Language: "es",
		},
		Perplexity: PerplexityConfig{
			Model: "sonar",
		},
		Agent: AgentConfig{
			MaxIterations: 15,
			RetryAttempts: 3,
			RetryDelaySec: 30,
		},
		Branches: []BranchConfig{
			{Name: "MIT", WeeklyHours: 2, Emoji: "🎓"},
			{Name: "Intervia.ai", WeeklyHours: 10, Emoji: "🤖"},
			{Name: "AION Growth Studio", WeeklyHours: 15, Emoji: "🚀"},
			{Name: "Marca Personal", WeeklyHours: 4, Emoji: "⭐"},
			{Name: "Buscar trabajo", WeeklyHours: 15, Emoji: "💼"},
			{Name: "Networking", WeeklyHours: 4, Emoji: "🤝"},
			{Name: "Personal", WeeklyHours: 4, Emoji: "🏠"},
		},
		DataDir:  "data",
		Timezone: "Europe/Madrid",
	}
}

// BranchNames returns the configured branch names in order.
func (c *Config) BranchNames() []string {
	names := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		names[i] = b.Name
	}
	return names
}

// BranchHours returns the weekly hour target per branch.
func (c *Config) BranchHours() map[string]float64 {
	hours := make(map[string]float64, len(c.Branches))
	for _, b := range c.Branches {
		hours[b.Name] = b.WeeklyHours
	}
	return hours
}
