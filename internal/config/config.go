package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 8040
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "a4_roots"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"

	defaultCooldown        = 5 * time.Minute
	defaultGlobalCeiling   = 100
	defaultGlobalWindow    = time.Hour
	defaultDownloadTimeout = 30 * time.Second

	defaultMaxCommentDepth = 10
	defaultMaxCommentNodes = 2000
)

// Load reads the YAML config file, applies defaults and validates the AI
// provider map. Provider misconfiguration is fatal here, not at call time.
func Load(configPath string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	applyDefaults(&cfg)
	if cfg.DSN == "" {
		cfg.DSN = cfg.Database.DSNValue()
	}
	if err := validateAIConfig(cfg.AI); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Summarization: SummarizationConfig{
			Cooldown:        defaultCooldown,
			GlobalCeiling:   defaultGlobalCeiling,
			GlobalWindow:    defaultGlobalWindow,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Export: ExportConfig{
			MaxCommentDepth: defaultMaxCommentDepth,
			MaxCommentNodes: defaultMaxCommentNodes,
		},
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = defaultEnv
	}
	if cfg.Summarization.Cooldown == 0 {
		cfg.Summarization.Cooldown = defaultCooldown
	}
	if cfg.Summarization.GlobalCeiling == 0 {
		cfg.Summarization.GlobalCeiling = defaultGlobalCeiling
	}
	if cfg.Summarization.GlobalWindow == 0 {
		cfg.Summarization.GlobalWindow = defaultGlobalWindow
	}
	if cfg.Summarization.DownloadTimeout == 0 {
		cfg.Summarization.DownloadTimeout = defaultDownloadTimeout
	}
	if cfg.Export.MaxCommentDepth == 0 {
		cfg.Export.MaxCommentDepth = defaultMaxCommentDepth
	}
	if cfg.Export.MaxCommentNodes == 0 {
		cfg.Export.MaxCommentNodes = defaultMaxCommentNodes
	}
}

func validateAIConfig(cfg AIConfig) error {
	for handle, provider := range cfg.Providers {
		var missing []string
		if strings.TrimSpace(provider.APIKey) == "" {
			missing = append(missing, "api_key")
		}
		if strings.TrimSpace(provider.ModelName) == "" {
			missing = append(missing, "model_name")
		}
		if strings.TrimSpace(provider.BaseURL) == "" {
			missing = append(missing, "base_url")
		}
		if len(missing) > 0 {
			return fmt.Errorf("ai provider %q is missing required fields: %s", handle, strings.Join(missing, ", "))
		}
	}
	if cfg.SummaryProvider != "" {
		if _, ok := cfg.Providers[cfg.SummaryProvider]; !ok {
			return fmt.Errorf("summary_provider %q: %s", cfg.SummaryProvider, availableHandles(cfg))
		}
	}
	if cfg.DocumentProvider != "" {
		if _, ok := cfg.Providers[cfg.DocumentProvider]; !ok {
			return fmt.Errorf("document_provider %q: %s", cfg.DocumentProvider, availableHandles(cfg))
		}
	}
	return nil
}

func availableHandles(cfg AIConfig) string {
	if len(cfg.Providers) == 0 {
		return "no ai providers configured"
	}
	handles := make([]string, 0, len(cfg.Providers))
	for handle := range cfg.Providers {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return "available providers: " + strings.Join(handles, ", ")
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.ToLower(strings.TrimSpace(c.Env)) != "production"
}
