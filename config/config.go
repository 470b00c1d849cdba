package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderGenAI  = "genai"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
)

var defaultGeminiModels = []string{
	"gemini-2.0-flash-001",
	"gemini-2.0-flash",
	"gemini-2.5-flash",
}

// CapabilityConfig configures one text-completion client. Every feature gets
// its own so credentials and models can differ per feature.
type CapabilityConfig struct {
	Name     string
	Provider string
	APIKey   string
	Models   []string
	BaseURL  string
	Project  string
	Location string
	Timeout  time.Duration
	Retries  int
}

type ServerConfig struct {
	Port           int
	StaticDir      string
	GinMode        string
	MaxUploadBytes int64
}

type LogConfig struct {
	Level  string
	Format string
}

type InterviewConfig struct {
	ConfigFile        string
	SessionCapacity   int
	SessionIdleTTL    time.Duration
	SummaryEvictAfter time.Duration
}

type StorageConfig struct {
	DSN          string
	FeedbackFile string
	RabbitMQURL  string
	SummaryQueue string
}

type AppConfig struct {
	Server    ServerConfig
	Log       LogConfig
	Interview InterviewConfig
	Storage   StorageConfig

	General     CapabilityConfig
	Resume      CapabilityConfig
	InterviewAI CapabilityConfig
	Trends      CapabilityConfig
}

// Load reads the whole application configuration from the environment.
func Load() *AppConfig {
	timeout := getEnvAsDuration("CAPABILITY_TIMEOUT", 30*time.Second)
	retries := getEnvAsInt("CAPABILITY_RETRIES", 2)
	fallbackKey := getEnv("GEMINI_API_KEY", "")

	return &AppConfig{
		Server: ServerConfig{
			Port:           getEnvAsInt("PORT", 3000),
			StaticDir:      getEnv("STATIC_DIR", ""),
			GinMode:        getEnv("GIN_MODE", "release"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Interview: InterviewConfig{
			ConfigFile:        getEnv("INTERVIEW_CONFIG", ""),
			SessionCapacity:   getEnvAsInt("SESSION_CAPACITY", 10000),
			SessionIdleTTL:    getEnvAsDuration("SESSION_IDLE_TTL", 2*time.Hour),
			SummaryEvictAfter: getEnvAsDuration("SUMMARY_EVICT_AFTER", 5*time.Minute),
		},
		Storage: StorageConfig{
			DSN:          getEnv("DB_DSN", ""),
			FeedbackFile: getEnv("FEEDBACK_FILE", "feedback.json"),
			RabbitMQURL:  getEnv("RABBITMQ_URL", ""),
			SummaryQueue: getEnv("SUMMARY_QUEUE", "interview_summaries"),
		},
		General:     loadCapability("general", "GEMINI", fallbackKey, timeout, retries),
		Resume:      loadCapability("resume", "RESUME", fallbackKey, timeout, retries),
		InterviewAI: loadCapability("interview", "INTERVIEW", fallbackKey, timeout, retries),
		Trends:      loadCapability("trends", "TRENDS", fallbackKey, timeout, retries),
	}
}

func loadCapability(name, prefix, fallbackKey string, timeout time.Duration, retries int) CapabilityConfig {
	cfg := CapabilityConfig{
		Name:     name,
		Provider: strings.ToLower(getEnv(prefix+"_PROVIDER", ProviderGemini)),
		APIKey:   getEnv(prefix+"_API_KEY", fallbackKey),
		Models:   getEnvAsList(prefix+"_MODELS", nil),
		Project:  getEnv("VERTEX_PROJECT", ""),
		Location: getEnv("VERTEX_LOCATION", "us-central1"),
		Timeout:  timeout,
		Retries:  retries,
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		cfg.APIKey = getEnv(prefix+"_API_KEY", getEnv("OPENAI_API_KEY", ""))
		cfg.BaseURL = getEnv("OPENAI_BASE_URL", "")
		if len(cfg.Models) == 0 {
			cfg.Models = []string{"gpt-4o-mini"}
		}
	default:
		cfg.BaseURL = getEnv("GEMINI_BASE_URL", "")
		if len(cfg.Models) == 0 {
			cfg.Models = append([]string(nil), defaultGeminiModels...)
		}
	}
	return cfg
}

// Validate checks the values that would otherwise fail at first use.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("PORT must be positive")
	}
	if c.Interview.SessionCapacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be positive")
	}
	if c.Interview.SummaryEvictAfter <= 0 {
		return fmt.Errorf("SUMMARY_EVICT_AFTER must be positive")
	}
	for _, cc := range []CapabilityConfig{c.General, c.Resume, c.InterviewAI, c.Trends} {
		if err := cc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c CapabilityConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderGenAI, ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%s capability: API key is required for provider %q", c.Name, c.Provider)
		}
	case ProviderVertex:
		if c.Project == "" {
			return fmt.Errorf("%s capability: VERTEX_PROJECT is required", c.Name)
		}
	default:
		return fmt.Errorf("%s capability: unknown provider %q", c.Name, c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s capability: CAPABILITY_TIMEOUT must be positive", c.Name)
	}
	if c.Retries < 1 {
		return fmt.Errorf("%s capability: CAPABILITY_RETRIES must be at least 1", c.Name)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("%s capability: no models configured", c.Name)
	}
	return nil
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
