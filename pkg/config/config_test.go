package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysFromEnvNumberedConvention(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "sk-one")
	t.Setenv("GEMINI_API_KEY_2", "sk-two")
	t.Setenv("GEMINI_API_KEY_3", "  sk-three  ")

	keys := KeysFromEnv("gemini")
	require.Len(t, keys, 3)
	assert.Equal(t, "gemini-1", keys[0].Label)
	assert.Equal(t, "sk-one", keys[0].Secret)
	assert.Equal(t, "gemini-2", keys[1].Label)
	assert.Equal(t, "sk-three", keys[2].Secret, "values are trimmed")
}

func TestKeysFromEnvStopsAtGap(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "sk-one")
	t.Setenv("GEMINI_API_KEY_3", "sk-three") // _2 missing

	keys := KeysFromEnv("gemini")
	require.Len(t, keys, 1)
	assert.Equal(t, "sk-one", keys[0].Secret)
}

func TestKeysFromEnvMissing(t *testing.T) {
	assert.Empty(t, KeysFromEnv("definitely-not-configured"))
}

func TestKeysFromEnvProviderNameNormalization(t *testing.T) {
	t.Setenv("YOUTUBE_DATA_API_KEY", "sk-yt")

	keys := KeysFromEnv("youtube-data")
	require.Len(t, keys, 1)
	assert.Equal(t, "youtube-data-1", keys[0].Label)
}

func TestLoadDefaults(t *testing.T) {
	s := Load()
	assert.Equal(t, "9090", s.HTTPPort)
	assert.Equal(t, []string{"gemini", "perplexity"}, s.Providers)
	assert.Equal(t, "gemini", s.PrimaryProvider)
	assert.Equal(t, 0, s.DailyQuotaLimit)
	assert.Equal(t, "rotation:usage", s.UsageLogKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8123")
	t.Setenv("PROVIDERS", "gemini, openai ,")
	t.Setenv("PRIMARY_PROVIDER", "openai")
	t.Setenv("DAILY_QUOTA_LIMIT", "250")

	s := Load()
	assert.Equal(t, "8123", s.HTTPPort)
	assert.Equal(t, []string{"gemini", "openai"}, s.Providers)
	assert.Equal(t, "openai", s.PrimaryProvider)
	assert.Equal(t, 250, s.DailyQuotaLimit)
}
