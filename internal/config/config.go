package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	OAuth    OAuthConfig
	Ai       AIConfig
	Intake   IntakeConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	FrontendURL        string
	Environment        string
	LogFilePath        string
	FeedLogFilePath    string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	ResetTokenTTL  time.Duration
	MinPasswordLen int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type AIConfig struct {
	LLMProvider     string // "gemini", "openai", "ollama", "huggingface"
	LLMModel        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	HuggingFaceKey  string
	HuggingFaceURL  string
	OllamaBaseURL   string
	TranscribeModel string
	// Zero means no deadline on outbound calls.
	LLMTimeout time.Duration
}

type IntakeConfig struct {
	PanelDelay            time.Duration
	PersistRetryAttempts  int
	PersistRetryBaseDelay time.Duration
	StateTTL              time.Duration
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			FeedLogFilePath:    getEnv("FEED_LOG_FILE_PATH", "logs/feed.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "default_secret"),
			TokenTTL:       getEnvAsDuration("JWT_TTL", 24*time.Hour),
			ResetTokenTTL:  getEnvAsDuration("RESET_TOKEN_TTL", 15*time.Minute),
			MinPasswordLen: getEnvAsInt("MIN_PASSWORD_LENGTH", 6),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "CouncellorX"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/v1/auth/oauth/google/callback"),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:        getEnv("LLM_MODEL", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			HuggingFaceKey:  getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL:  getEnv("HUGGINGFACE_BASE_URL", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TranscribeModel: getEnv("TRANSCRIBE_MODEL", "whisper-1"),
			LLMTimeout:      getEnvAsDuration("LLM_TIMEOUT", 0),
		},
		Intake: IntakeConfig{
			PanelDelay:            getEnvAsDuration("INTAKE_PANEL_DELAY", 1500*time.Millisecond),
			PersistRetryAttempts:  getEnvAsInt("PERSIST_RETRY_ATTEMPTS", 3),
			PersistRetryBaseDelay: getEnvAsDuration("PERSIST_RETRY_BASE_DELAY", time.Second),
			StateTTL:              getEnvAsDuration("INTAKE_STATE_TTL", time.Hour),
		},
		Otel: OtelConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("1.5s") or plain milliseconds ("1500").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
