package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerHealthAndInfo(t *testing.T) {
	t.Setenv("NATS_URL", "")
	t.Setenv("GAME_CONFIG", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	services, err := setupServices(cfg)
	require.NoError(t, err)
	t.Cleanup(services.Timers.Stop)

	handler := setupServer(cfg, services).Handler

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "letterturn", info["service"])
	assert.Equal(t, float64(0), info["connections"])
	assert.Equal(t, float64(0), info["rooms"])
}

func TestConfigureLoggingUsesConsoleFormat(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	configureLogging(&buf, "")
	log.Error().Msg("failed to load configuration")

	line := buf.String()
	assert.Contains(t, line, "failed to load configuration")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(line), "{"), "console writer, not raw JSON: %s", line)

	buf.Reset()
	configureLogging(&buf, "warn")
	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}
