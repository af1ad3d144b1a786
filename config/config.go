package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	HTTPPort     string
	HTTPSPort    string
	Domains      []string
	CertCacheDir string
	LogDir       string

	DatabaseURL string

	OpenAIAPIKey   string
	EmbeddingModel string
	ChatModel      string

	// Retrieval tunables. These are configuration, not semantics; the
	// defaults match what the pipeline was tuned with.
	ChunkTokenBudget   int
	OverlapTokenBudget int
	RetrieveTopK       int
	RerankTopK         int
	RerankScoreFloor   float64
	MaxHistoryTurns    int

	EmbedTimeout    time.Duration
	GenerateTimeout time.Duration

	IndexMaintenanceInterval time.Duration
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		Domains:      []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir: getEnv("CERT_CACHE_DIR", "./certs"),
		LogDir:       getEnv("LOG_DIR", "./logs"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),

		ChunkTokenBudget:   getEnvAsInt("CHUNK_TOKEN_BUDGET", 400),
		OverlapTokenBudget: getEnvAsInt("OVERLAP_TOKEN_BUDGET", 50),
		RetrieveTopK:       getEnvAsInt("RETRIEVE_TOP_K", 6),
		RerankTopK:         getEnvAsInt("RERANK_TOP_K", 3),
		RerankScoreFloor:   getEnvAsFloat("RERANK_SCORE_FLOOR", 0.3),
		MaxHistoryTurns:    getEnvAsInt("MAX_HISTORY_TURNS", 6),

		EmbedTimeout:    time.Duration(getEnvAsInt("EMBED_TIMEOUT_SECONDS", 30)) * time.Second,
		GenerateTimeout: time.Duration(getEnvAsInt("GENERATE_TIMEOUT_SECONDS", 120)) * time.Second,

		IndexMaintenanceInterval: time.Duration(getEnvAsInt("INDEX_MAINTENANCE_INTERVAL", 3600)) * time.Second,
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
