package models

import "time"

// Provider names accepted by ai.default.
const (
	ProviderLocal = "local"
	ProviderCloud = "cloud"
)

// Cloud sub-provider names accepted by ai.cloud.provider.
const (
	CloudOpenAI = "openai"
	CloudGemini = "gemini"
)

// Config is the fully resolved configuration read from config.yaml.
type Config struct {
	Project       ProjectConfig       `yaml:"project" mapstructure:"project"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	AI            AIConfig            `yaml:"ai" mapstructure:"ai"`
	TechStack     TechStack           `yaml:"tech_stack" mapstructure:"tech_stack"`
	Notifications NotificationConfig  `yaml:"notifications" mapstructure:"notifications"`
	Output        OutputConfig        `yaml:"output" mapstructure:"output"`
	Decomposition DecompositionConfig `yaml:"decomposition" mapstructure:"decomposition"`
}

// ProjectConfig locates the source tree searched for reusable code.
type ProjectConfig struct {
	BasePath string `yaml:"base_path" mapstructure:"base_path"`
}

// SearchConfig controls which files the relevance scorer reads and how
// results feed the reuse decision.
type SearchConfig struct {
	FileExtensions []string `yaml:"file_extensions" mapstructure:"file_extensions"`
	ExcludeDirs    []string `yaml:"exclude_dirs" mapstructure:"exclude_dirs"`
	MaxResults     int      `yaml:"max_results" mapstructure:"max_results"`
	ReuseThreshold int      `yaml:"reuse_threshold" mapstructure:"reuse_threshold"`
}

// AIConfig selects and configures the code-generation backend.
type AIConfig struct {
	Default string        `yaml:"default" mapstructure:"default"`
	Local   LocalAIConfig `yaml:"local" mapstructure:"local"`
	Cloud   CloudAIConfig `yaml:"cloud" mapstructure:"cloud"`
}

// LocalAIConfig describes the command-line model runner.
type LocalAIConfig struct {
	Command string        `yaml:"command" mapstructure:"command"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CloudAIConfig describes the hosted chat-completion API.
type CloudAIConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TechStack labels are injected into generation prompts.
type TechStack struct {
	Frontend []string `yaml:"frontend" mapstructure:"frontend"`
	Backend  []string `yaml:"backend" mapstructure:"backend"`
	Database []string `yaml:"database" mapstructure:"database"`
	// CommentLanguage asks the model to comment in a given language, e.g.
	// Korean. Empty leaves the language to the model.
	CommentLanguage string `yaml:"comment_language" mapstructure:"comment_language"`
}

// NotificationConfig holds delivery settings for the run summary.
type NotificationConfig struct {
	Timeout  time.Duration  `yaml:"timeout" mapstructure:"timeout"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Slack    SlackConfig    `yaml:"slack" mapstructure:"slack"`
}

// TelegramConfig holds Telegram bot credentials.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	ChatID   string `yaml:"chat_id" mapstructure:"chat_id"`
}

// SlackConfig holds a Slack incoming webhook.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// OutputConfig locates artifacts, the log file and the event log.
type OutputConfig struct {
	LogsDir string `yaml:"logs_dir" mapstructure:"logs_dir"`
}

// DecompositionConfig adds user-defined decomposition rules, checked before
// the built-in ones.
type DecompositionConfig struct {
	Rules []RuleConfig `yaml:"rules,omitempty" mapstructure:"rules"`
}

// RuleConfig is one user-defined decomposition rule.
type RuleConfig struct {
	Name     string           `yaml:"name" mapstructure:"name"`
	Triggers []string         `yaml:"triggers" mapstructure:"triggers"`
	Tasks    []TaskRuleConfig `yaml:"tasks" mapstructure:"tasks"`
}

// TaskRuleConfig is one task template of a RuleConfig.
type TaskRuleConfig struct {
	ID          string `yaml:"id" mapstructure:"id"`
	Description string `yaml:"description" mapstructure:"description"`
}
