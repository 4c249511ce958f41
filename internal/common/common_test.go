package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"DB_URL", "HTTP_ADDR", "GRPC_HEALTH_ADDR", "LLM_BASE_URL", "LLM_MODEL",
		"LLM_API_KEY", "LLM_TIMEOUT", "LLM_RESPONSE_MODE", "MAX_TEXT_CHARS", "BATCH_CONCURRENCY", "PDF_REPAIR"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, DefaultDSN, cfg.Database.DSN)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Empty(t, cfg.Server.GRPCHealthAddr)
	assert.Equal(t, "http://localhost:8000/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "meta-llama/Meta-Llama-3.1-8B-Instruct", cfg.LLM.Model)
	assert.Equal(t, "None", cfg.LLM.APIKey)
	assert.Zero(t, cfg.LLM.Timeout)
	assert.Equal(t, constants.ResponseModeLines, cfg.LLM.ResponseMode)
	assert.Equal(t, constants.MaxTextChars, cfg.Extraction.MaxTextChars)
	assert.Equal(t, 1, cfg.Extraction.Concurrency)
	assert.True(t, cfg.Extraction.RepairPDFs)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("GRPC_HEALTH_ADDR", ":9090")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_RESPONSE_MODE", "JSON")
	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("MAX_TEXT_CHARS", "not-a-number")
	t.Setenv("PDF_REPAIR", "false")

	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.Server.GRPCHealthAddr)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, constants.ResponseModeJSON, cfg.LLM.ResponseMode)
	assert.Equal(t, 4, cfg.Extraction.Concurrency)
	assert.False(t, cfg.Extraction.RepairPDFs)
	// unparsable values fall back to the default
	assert.Equal(t, constants.MaxTextChars, cfg.Extraction.MaxTextChars)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no dsn", func(c *Config) { c.Database.DSN = "" }},
		{"no base url", func(c *Config) { c.LLM.BaseURL = "" }},
		{"no model", func(c *Config) { c.LLM.Model = "" }},
		{"no http addr", func(c *Config) { c.Server.HTTPAddr = "" }},
		{"zero budget", func(c *Config) { c.Extraction.MaxTextChars = 0 }},
		{"zero concurrency", func(c *Config) { c.Extraction.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "CONFIG_ERROR", appErr.Code)
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindDocumentParse, Kind(fmt.Errorf("a.pdf: %w", ErrDocumentParse)))
	assert.Equal(t, KindTransport, Kind(fmt.Errorf("%w: 503", ErrTransport)))
	assert.Equal(t, KindInternal, Kind(errors.New("boom")))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)

	buf.Reset()
	NewLogger(LogConfig{Level: "bogus"}, &buf).Info("text line")
	assert.True(t, strings.Contains(buf.String(), "msg=\"text line\""))
}

func TestLogAttrs(t *testing.T) {
	assert.Empty(t, LogAttrs(context.Background()))

	ctx := WithRunID(WithSessionID(WithRequestID(context.Background(), "req-1"), "s-1"), "r-1")
	assert.Equal(t, []any{"http_req_id", "req-1", "session_id", "s-1", "run_id", "r-1"}, LogAttrs(ctx))
}
