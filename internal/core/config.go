// Package core contains the business logic for ai-coder: configuration,
// request decomposition, relevance scoring, task resolution and the run
// pipeline that ties them together.
package core

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/ai-coder/pkg/models"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "config.yaml"

// envPrefix scopes environment overrides, e.g. AICODER_AI_DEFAULT=cloud.
const envPrefix = "AICODER"

// Default search knobs. They carry no deeper meaning than "worked well
// enough" and are exposed as search.max_results and search.reuse_threshold.
const (
	DefaultMaxResults     = 5
	DefaultReuseThreshold = 50
)

// ConfigError marks a configuration problem that must abort startup.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConfigurationManager loads and validates the ai-coder configuration.
type ConfigurationManager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper, with a
// yaml.v3 pre-pass that substitutes ${VAR} placeholders.
type viperConfigManager struct {
	path   string
	lookup LookupFunc
}

// NewConfigurationManager creates a ConfigurationManager reading the YAML
// file at path. An empty path means DefaultConfigFile.
func NewConfigurationManager(path string) ConfigurationManager {
	if path == "" {
		path = DefaultConfigFile
	}
	return &viperConfigManager{path: path, lookup: os.LookupEnv}
}

// setDefaults registers every key so missing entries fall back gracefully
// and AICODER_* overrides are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.base_path", ".")
	v.SetDefault("search.file_extensions", []string{".py", ".js", ".ts", ".go", ".sql"})
	v.SetDefault("search.exclude_dirs", []string{"node_modules", ".git", "__pycache__", "venv"})
	v.SetDefault("search.max_results", DefaultMaxResults)
	v.SetDefault("search.reuse_threshold", DefaultReuseThreshold)
	v.SetDefault("ai.default", models.ProviderLocal)
	v.SetDefault("ai.local.command", "ollama")
	v.SetDefault("ai.local.model", "codellama")
	v.SetDefault("ai.local.timeout", 60*time.Second)
	v.SetDefault("ai.cloud.provider", models.CloudOpenAI)
	v.SetDefault("ai.cloud.api_key", "")
	v.SetDefault("ai.cloud.model", "gpt-4")
	v.SetDefault("ai.cloud.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.cloud.max_tokens", 4096)
	v.SetDefault("ai.cloud.temperature", 0.1)
	v.SetDefault("ai.cloud.timeout", 30*time.Second)
	v.SetDefault("tech_stack.frontend", []string{})
	v.SetDefault("tech_stack.backend", []string{})
	v.SetDefault("tech_stack.database", []string{})
	v.SetDefault("tech_stack.comment_language", "")
	v.SetDefault("notifications.timeout", 10*time.Second)
	v.SetDefault("notifications.telegram.enabled", false)
	v.SetDefault("notifications.telegram.bot_token", "")
	v.SetDefault("notifications.telegram.chat_id", "")
	v.SetDefault("notifications.slack.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")
	v.SetDefault("output.logs_dir", "logs")
}

// Load reads the configuration file, substitutes environment placeholders,
// applies AICODER_* overrides and validates the result. A missing file is
// an error: unlike per-repo settings there is nothing sensible to run on.
func (cm *viperConfigManager) Load() (*models.Config, error) {
	data, err := os.ReadFile(cm.path)
	if err != nil {
		return nil, &ConfigError{Path: cm.path, Err: err}
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &ConfigError{Path: cm.path, Err: fmt.Errorf("parsing yaml: %w", err)}
	}

	settings := map[string]any{}
	if tree != nil {
		m, ok := SubstituteEnv(tree, cm.lookup).(map[string]any)
		if !ok {
			return nil, &ConfigError{Path: cm.path, Err: fmt.Errorf("top level must be a mapping, got %T", tree)}
		}
		settings = m
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeConfigMap(settings); err != nil {
		return nil, &ConfigError{Path: cm.path, Err: fmt.Errorf("merging settings: %w", err)}
	}

	cfg := &models.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &ConfigError{Path: cm.path, Err: fmt.Errorf("decoding settings: %w", err)}
	}

	if err := cm.Validate(cfg); err != nil {
		return nil, &ConfigError{Path: cm.path, Err: err}
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values and reports all of
// them at once. Provider names are not checked here: the generation gateway
// turns an unknown provider into a placeholder instead of aborting the run.
func (cm *viperConfigManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.Project.BasePath) == "" {
		errs = append(errs, "project.base_path must not be empty")
	}
	if len(cfg.Search.FileExtensions) == 0 {
		errs = append(errs, "search.file_extensions must list at least one extension")
	}
	if cfg.Search.MaxResults <= 0 {
		errs = append(errs, fmt.Sprintf("search.max_results must be positive, got %d", cfg.Search.MaxResults))
	}
	if cfg.Search.ReuseThreshold < 0 {
		errs = append(errs, fmt.Sprintf("search.reuse_threshold must be non-negative, got %d", cfg.Search.ReuseThreshold))
	}
	if strings.TrimSpace(cfg.AI.Default) == "" {
		errs = append(errs, "ai.default must not be empty")
	}
	if cfg.AI.Cloud.MaxTokens < 0 || int64(cfg.AI.Cloud.MaxTokens) > math.MaxInt32 {
		errs = append(errs, fmt.Sprintf("ai.cloud.max_tokens must be between 0 and %d, got %d", math.MaxInt32, cfg.AI.Cloud.MaxTokens))
	}
	if strings.TrimSpace(cfg.Output.LogsDir) == "" {
		errs = append(errs, "output.logs_dir must not be empty")
	}
	for i, rule := range cfg.Decomposition.Rules {
		if len(rule.Triggers) == 0 {
			errs = append(errs, fmt.Sprintf("decomposition.rules[%d] has no triggers", i))
		}
		if len(rule.Tasks) == 0 {
			errs = append(errs, fmt.Sprintf("decomposition.rules[%d] has no tasks", i))
		}
		for j, task := range rule.Tasks {
			if task.ID == "" {
				errs = append(errs, fmt.Sprintf("decomposition.rules[%d].tasks[%d].id must not be empty", i, j))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
