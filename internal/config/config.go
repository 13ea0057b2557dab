package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port string

	// Auth
	JWTSecret          []byte
	AllowedEmailDomain string

	// Audio pipeline
	SourceSampleRate int
	SpeechSampleRate int
	LanguageCode     string
	StreamLimit      time.Duration
	Diarization      bool
	QueueCapacity    int

	// Gemini
	GeminiAPIKey   string
	GeminiModel    string
	FactCategories []string

	// MockServices swaps the speech and advisory adapters for local mocks,
	// so the server runs without Google credentials.
	MockServices bool

	// Persistence
	StorageBackend string // "gcs", "mongo" or "log"
	GCSBucket      string
	MongoURI       string
	MongoDatabase  string
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (*Config, error) {
	// A missing .env file is fine; environment variables take over.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          []byte(os.Getenv("JWT_SECRET")),
		AllowedEmailDomain: os.Getenv("ALLOWED_EMAIL_DOMAIN"),
		SourceSampleRate:   getEnvInt("SOURCE_SAMPLE_RATE", 48000),
		SpeechSampleRate:   getEnvInt("SPEECH_SAMPLE_RATE", 16000),
		LanguageCode:       getEnv("LANGUAGE_CODE", "en-US"),
		StreamLimit:        time.Duration(getEnvInt("STREAM_LIMIT_SECONDS", 290)) * time.Second,
		Diarization:        getEnvBool("ENABLE_DIARIZATION", false),
		QueueCapacity:      getEnvInt("INGEST_QUEUE_CAPACITY", 0),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		FactCategories:     splitList(getEnv("FACT_CATEGORIES", "infrastructure,other")),
		MockServices:       getEnvBool("USE_MOCK_SERVICES", false),
		StorageBackend:     getEnv("STORAGE_BACKEND", "gcs"),
		GCSBucket:          os.Getenv("GCS_BUCKET_NAME"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGODB_DATABASE", "ceassist"),
	}

	if cfg.GeminiAPIKey == "" && !cfg.MockServices {
		return nil, fmt.Errorf("GEMINI_API_KEY not found in environment")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET not found in environment")
	}
	if cfg.StorageBackend == "gcs" && cfg.GCSBucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET_NAME is required when STORAGE_BACKEND is gcs")
	}

	return cfg, nil
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

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
