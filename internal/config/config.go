package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	PluginsPath        string
	BlockTemplatesPath string
	EventsPath         string
	ScriptStatePath    string
	APIReferencePath   string
	DatabaseURL        string
	WorkerCount        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		PluginsPath:        getEnv("PLUGINS_PATH", "plugins.json"),
		BlockTemplatesPath: getEnv("BLOCK_TEMPLATES_PATH", "block_templates.json"),
		EventsPath:         getEnv("EVENTS_PATH", "events.json"),
		ScriptStatePath:    getEnv("SCRIPT_STATE_PATH", "script_state.json"),
		APIReferencePath:   getEnv("API_REFERENCE_PATH", "perl_reference.txt"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		WorkerCount:        getEnvInt("WORKER_COUNT", 8),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
