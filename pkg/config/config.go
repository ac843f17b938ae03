// Package config loads service settings and discovers pooled credentials
// from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/KAFKA2306/2510youtuber-sub001/pkg/rotation"
)

// KeysFromEnv discovers credentials for a provider using the numbered
// convention <PROVIDER>_API_KEY, <PROVIDER>_API_KEY_2, <PROVIDER>_API_KEY_3,
// and so on. Scanning stops at the first missing or empty variable, so the
// numbering must be gap-free. Returned keys are labeled "<provider>-<n>" in
// discovery order.
func KeysFromEnv(provider string) []rotation.KeyConfig {
	prefix := strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"

	var keys []rotation.KeyConfig
	for i := 1; ; i++ {
		name := prefix
		if i > 1 {
			name = fmt.Sprintf("%s_%d", prefix, i)
		}
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			break
		}
		keys = append(keys, rotation.KeyConfig{
			Label:  fmt.Sprintf("%s-%d", provider, i),
			Secret: v,
		})
	}
	return keys
}

// Settings holds the rotationd service configuration.
type Settings struct {
	HTTPPort        string
	Providers       []string
	PrimaryProvider string
	DailyQuotaLimit int // applied to the primary provider; 0 disables

	RedisAddr      string // empty disables the Redis usage log
	RedisPassword  string
	RedisDB        int
	UsageLogKey    string
	UsageLogMaxLen int
}

// Load reads settings from the environment with defaults.
func Load() Settings {
	return Settings{
		HTTPPort:        envOrDefault("HTTP_PORT", "9090"),
		Providers:       splitList(envOrDefault("PROVIDERS", "gemini,perplexity")),
		PrimaryProvider: envOrDefault("PRIMARY_PROVIDER", "gemini"),
		DailyQuotaLimit: envIntOrDefault("DAILY_QUOTA_LIMIT", 0),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         envIntOrDefault("REDIS_DB", 0),
		UsageLogKey:     envOrDefault("USAGE_LOG_KEY", "rotation:usage"),
		UsageLogMaxLen:  envIntOrDefault("USAGE_LOG_MAX_LEN", 10000),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
