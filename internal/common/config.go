package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/pdf-data-extractor/constants"
)

// DefaultDSN keeps every session in process memory; nothing outlives the process.
const DefaultDSN = "file:pdfx?mode=memory&cache=shared"

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Log        LogConfig
}

// DatabaseConfig holds session store configuration
type DatabaseConfig struct {
	DSN string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	GRPCHealthAddr string
	MaxUploadMB    int
	RequestTimeout time.Duration
}

// LLMConfig holds inference endpoint configuration
type LLMConfig struct {
	BaseURL      string
	Model        string
	APIKey       string
	Temperature  float32
	Timeout      time.Duration // 0 = no timeout
	ResponseMode constants.ResponseMode
}

// ExtractionConfig holds pipeline behavior
type ExtractionConfig struct {
	MaxTextChars int
	Concurrency  int
	TempDir      string
	PromptsFile  string
	RepairPDFs   bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables, reading .env first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// a malformed .env should not stop startup; the environment still applies
		_, _ = os.Stderr.WriteString("warning: could not load .env: " + err.Error() + "\n")
	}
	return &Config{
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", DefaultDSN),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
			GRPCHealthAddr: os.Getenv("GRPC_HEALTH_ADDR"),
			MaxUploadMB:    getEnvAsInt("MAX_UPLOAD_MB", 64),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 0),
		},
		LLM: LLMConfig{
			BaseURL:      getEnv("LLM_BASE_URL", "http://localhost:8000/v1"),
			Model:        getEnv("LLM_MODEL", "meta-llama/Meta-Llama-3.1-8B-Instruct"),
			APIKey:       getEnv("LLM_API_KEY", "None"),
			Temperature:  getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", 0),
			ResponseMode: constants.ParseResponseMode(strings.ToLower(getEnv("LLM_RESPONSE_MODE", "lines"))),
		},
		Extraction: ExtractionConfig{
			MaxTextChars: getEnvAsInt("MAX_TEXT_CHARS", constants.MaxTextChars),
			Concurrency:  getEnvAsInt("BATCH_CONCURRENCY", 1),
			TempDir:      os.Getenv("TEMP_DIR"),
			PromptsFile:  os.Getenv("PROMPTS_FILE"),
			RepairPDFs:   getEnvAsBool("PDF_REPAIR", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.LLM.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "LLM_BASE_URL is required", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "LLM_MODEL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extraction.MaxTextChars <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_TEXT_CHARS must be positive", ErrInvalidInput)
	}
	if c.Extraction.Concurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_CONCURRENCY must be positive", ErrInvalidInput)
	}
	return nil
}
