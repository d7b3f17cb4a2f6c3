package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	Env             string
	SessionStore    string
	SessionSecret   string
	LogFormat       string
	LogLevel        string

	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingDim      int
	GeminiAPIKey      string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OllamaBaseURL     string

	ScoringCharLimit int
	SummaryCharLimit int
	MaxUploadMB      int

	CalendarCredentialsFile string
	CalendarTokenFile       string
	CalendarID              string
	InterviewTimezone       string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; variables already set win.
	for _, path := range []string{".env", "cmd/.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				log.Printf("failed to load %s: %v", path, err)
			}
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,
		Env:             env,
		SessionStore:    normalizeSessionStore(getEnv("SESSION_STORE", ""), dbURL),
		SessionSecret:   os.Getenv("JWT_SECRET"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "hashing")),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
		EmbeddingDim:      getInt("EMBEDDING_DIM", 0),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", ""),

		ScoringCharLimit: getInt("SCORING_CHAR_LIMIT", 4000),
		SummaryCharLimit: getInt("SUMMARY_CHAR_LIMIT", 700),
		MaxUploadMB:      getInt("MAX_UPLOAD_MB", 32),

		CalendarCredentialsFile: getEnv("CALENDAR_CREDENTIALS_FILE", "credentials.json"),
		CalendarTokenFile:       getEnv("CALENDAR_TOKEN_FILE", "token.json"),
		CalendarID:              getEnv("CALENDAR_ID", "primary"),
		InterviewTimezone:       getEnv("INTERVIEW_TIMEZONE", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return n
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

// normalizeSessionStore picks postgres when a database is configured and no store was named.
func normalizeSessionStore(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		if dbURL != "" {
			return "postgres"
		}
		return "memory"
	}
}
