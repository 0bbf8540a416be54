package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	BreakpointMarker string
	ScriptExtensions []string
	WorkerCount      int
	DatabaseURL      string
	Neo4jURI         string
	Neo4jUser        string
	Neo4jPassword    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		BreakpointMarker: getEnv("BREAKPOINT_MARKER", "#@breakpoint"),
		ScriptExtensions: getEnvList("SCRIPT_EXTENSIONS", []string{".rpy"}),
		WorkerCount:      getEnvInt("WORKER_COUNT", 8),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/rpy_localizer?sslmode=disable"),
		Neo4jURI:         getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", "password"),
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
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

// getEnvList reads a comma-separated list; extensions are lower-cased and
// given a leading dot.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
