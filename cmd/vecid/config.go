package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hupe1980/vecid/payload"
	"github.com/joho/godotenv"
)

// config is read from the environment, optionally seeded from a .env file.
type config struct {
	Key      string
	Salt     string
	Tier     payload.Tier // 0 selects by input size
	Trials   int
	LogLevel slog.Level
}

// loadDotEnv loads .env from the working directory. A missing file is not an error,
// and variables already set in the environment win.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{LogLevel: slog.LevelWarn}

	cfg.Key = getenv("VECID_KEY")
	cfg.Salt = getenv("VECID_SALT")

	if v := getenv("VECID_TIER"); v != "" {
		t, err := payload.ParseTier(v)
		if err != nil {
			return config{}, fmt.Errorf("VECID_TIER: %w", err)
		}
		cfg.Tier = t
	}

	if v := getenv("VECID_TRIALS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return config{}, fmt.Errorf("VECID_TRIALS: %w", err)
		}
		cfg.Trials = n
	}

	if v := getenv("VECID_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return config{}, fmt.Errorf("VECID_LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}
