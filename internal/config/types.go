package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"dsn"` // MySQL DSN
	Database       DatabaseRuntimeConfig `yaml:"database"`
	RedisURL       string                `yaml:"redis_url"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	AI             AIConfig              `yaml:"ai"`
	Summarization  SummarizationConfig   `yaml:"summarization"`
	Export         ExportConfig          `yaml:"export"`
}

type DatabaseRuntimeConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

// AIConfig maps provider handles to backend configurations and names the
// handle used for each concern.
type AIConfig struct {
	Providers        map[string]AIProvider `yaml:"providers"`
	SummaryProvider  string                `yaml:"summary_provider"`
	DocumentProvider string                `yaml:"document_provider"`
	SystemPrompt     string                `yaml:"system_prompt"`
}

// AIProvider is one configured AI backend. Type selects the client adapter:
// "openai" | "openai-compatible" | "mistral" | "anthropic".
type AIProvider struct {
	Type              string `yaml:"type"`
	APIKey            string `yaml:"api_key"`
	ModelName         string `yaml:"model_name"`
	BaseURL           string `yaml:"base_url"`
	SupportsImages    *bool  `yaml:"supports_images"`
	SupportsDocuments bool   `yaml:"supports_documents"`
}

// SummarizationConfig tunes the orchestrator's cache and rate-limit policy.
// A zero FallbackMaxAge disables serving stale summaries after provider
// failures.
type SummarizationConfig struct {
	Cooldown        time.Duration `yaml:"cooldown"`
	GlobalCeiling   int           `yaml:"global_ceiling"`
	GlobalWindow    time.Duration `yaml:"global_window"`
	FallbackMaxAge  time.Duration `yaml:"fallback_max_age"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// ExportConfig bounds the comment-tree traversal of the export aggregator.
type ExportConfig struct {
	MaxCommentDepth int `yaml:"max_comment_depth"`
	MaxCommentNodes int `yaml:"max_comment_nodes"`
}
