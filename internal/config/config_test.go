package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
dsn: "user:pass@tcp(localhost:3306)/app"
redis_url: "redis://localhost:6379/0"
jwt_secret: "secret"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, 5*time.Minute, cfg.Summarization.Cooldown)
	assert.Equal(t, 100, cfg.Summarization.GlobalCeiling)
	assert.Equal(t, time.Hour, cfg.Summarization.GlobalWindow)
	assert.Equal(t, time.Duration(0), cfg.Summarization.FallbackMaxAge)
	assert.Equal(t, 10, cfg.Export.MaxCommentDepth)
	assert.Equal(t, 2000, cfg.Export.MaxCommentNodes)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
port: 9000
env: production
dsn: "user:pass@tcp(localhost:3306)/app"
redis_url: "redis://localhost:6379/0"
jwt_secret: "secret"
summarization:
  cooldown: 2m
  global_ceiling: 50
  fallback_max_age: 24h
ai:
  summary_provider: main
  document_provider: vision
  providers:
    main:
      type: mistral
      api_key: key-1
      model_name: mistral-small
      base_url: https://api.mistral.ai
    vision:
      type: openai
      api_key: key-2
      model_name: gpt-4o
      base_url: https://api.openai.com/v1
      supports_images: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 2*time.Minute, cfg.Summarization.Cooldown)
	assert.Equal(t, 50, cfg.Summarization.GlobalCeiling)
	assert.Equal(t, 24*time.Hour, cfg.Summarization.FallbackMaxAge)
	assert.Equal(t, "main", cfg.AI.SummaryProvider)
	require.Contains(t, cfg.AI.Providers, "vision")
	require.NotNil(t, cfg.AI.Providers["vision"].SupportsImages)
	assert.True(t, *cfg.AI.Providers["vision"].SupportsImages)
}

func TestLoadProviderMissingFields(t *testing.T) {
	path := writeConfig(t, `
ai:
  providers:
    broken:
      type: openai
      api_key: key
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "model_name")
	assert.Contains(t, err.Error(), "base_url")
}

func TestLoadUnknownSummaryProvider(t *testing.T) {
	path := writeConfig(t, `
ai:
  summary_provider: missing
  providers:
    main:
      type: openai
      api_key: key
      model_name: model
      base_url: https://api.openai.com
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Contains(t, err.Error(), "main")
}

func TestLoadBuildsDSNFromParts(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  port: 3307
  user: roots
  password: pw
  name: participation
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.DSN, "roots:pw@tcp(db.internal:3307)/participation")
}
