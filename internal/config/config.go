package config

import (
	"os"
	"strconv"

	"github.com/MikeSquared-Agency/chilly/internal/dataset"
)

type Config struct {
	Port           int
	LogLevel       string
	InputDir       string
	Archive        string
	Profile        string
	ProfileFile    string
	ManifestPath   string
	DatabaseURL    string
	NatsURL        string
	NatsToken      string
	SlackBotToken  string
	SlackChannel   string
	PushgatewayURL string
}

func Load() Config {
	return Config{
		Port:           envInt("CHILLY_PORT", 8760),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		InputDir:       envStr("CHILLY_INPUT_DIR", "data/raw_data"),
		Archive:        envStr("CHILLY_ARCHIVE", ""),
		Profile:        envStr("CHILLY_PROFILE", ProfilePlain),
		ProfileFile:    envStr("CHILLY_PROFILE_FILE", ""),
		ManifestPath:   envStr("CHILLY_MANIFEST", dataset.DefaultManifestPath),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		SlackBotToken:  envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:   envStr("SLACK_DATASET_CHANNEL", ""),
		PushgatewayURL: envStr("PUSHGATEWAY_URL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
