package openai

import (
	"log/slog"
	"net/http"
	"time"
)

// Config for an OpenAI-compatible chat/completions endpoint (OpenAI, vLLM, llama.cpp server...).
type Config struct {
	APIKey      string        // sent as a bearer token; self-hosted endpoints accept a placeholder
	BaseURL     string        // e.g. http://localhost:8000/v1
	Model       string        // e.g. "meta-llama/Meta-Llama-3.1-8B-Instruct"
	Temperature float32       // 0 for deterministic sampling
	Timeout     time.Duration // 0 = no client-side timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = "None"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "meta-llama/Meta-Llama-3.1-8B-Instruct"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}
