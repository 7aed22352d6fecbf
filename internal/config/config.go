package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the analytics service.
// User-facing dashboard state (sort, filter, visibility flags) is not here;
// it is persisted per-user by internal/db.
type Config struct {
	ListenAddr string
	DataDir    string

	// ProviderBaseURL is the base URL of the diary backend that serves
	// parameter history, predictions, rating writes and retrain requests.
	ProviderBaseURL string

	// Strategies are the prediction model strategies whose suffixes are
	// stripped from prediction keys ("<param>_<strategy>").
	Strategies []string
}

// FromEnv creates a configuration instance sourced from environment variables.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:      getEnv("DIARY_LISTEN_ADDR", "127.0.0.1:8742"),
		DataDir:         getEnv("DIARY_DATA_DIR", "data"),
		ProviderBaseURL: getEnv("DIARY_PROVIDER_URL", "http://localhost:8000"),
		Strategies:      []string{"base", "flags"},
	}

	if s := os.Getenv("DIARY_STRATEGIES"); s != "" {
		var strategies []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				strategies = append(strategies, part)
			}
		}
		if len(strategies) == 0 {
			return Config{}, fmt.Errorf("parse DIARY_STRATEGIES: no strategies in %q", s)
		}
		cfg.Strategies = strategies
	}

	cfg.ProviderBaseURL = strings.TrimRight(cfg.ProviderBaseURL, "/")
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
