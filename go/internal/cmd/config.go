package main

import (
	"io"
	"os"
	"strconv"

	"github.com/mcdev12/letterturn/go/internal/game/settings"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string
	CORSOrigins string
	LogLevel    string
	NATSURL     string
	GameConfig  string
	RateLimit   float64
	RateBurst   int

	Game settings.Settings
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		CORSOrigins: getEnv("CORS_ORIGIN", "*"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		NATSURL:     os.Getenv("NATS_URL"),
		GameConfig:  os.Getenv("GAME_CONFIG"),
		RateLimit:   getEnvAsFloat("WS_RATE_LIMIT", 20),
		RateBurst:   getEnvAsInt("WS_RATE_BURST", 40),
	}

	game, err := settings.Load(cfg.GameConfig)
	if err != nil {
		return nil, err
	}
	cfg.Game = game
	return cfg, nil
}

// configureLogging routes the global logger to a console writer on out at
// the given level.
func configureLogging(out io.Writer, level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: out != os.Stderr})
	zerolog.SetGlobalLevel(parseLogLevel(level))
}

func parseLogLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
