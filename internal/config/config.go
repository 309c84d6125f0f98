package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Ai            AIConfig
	Completion    CompletionConfig
	Pipeline      PipelineConfig
	Transcription TranscriptionConfig
	Media         MediaConfig
	Tracing       TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	AuthRequired       bool
	BodyLimitMB        int
	RequestTimeout     time.Duration
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider     string // "openai", "deepseek", "ollama", "anthropic", "gemini"
	LLMModel        string
	BaseURL         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
	OllamaBaseURL   string
}

// CompletionConfig drives the shared completion client.
type CompletionConfig struct {
	RequestsPerMinute     int
	MaxConcurrentRequests int
	MaxRetries            int
	BaseDelay             time.Duration
	MaxDelay              time.Duration
	BackoffMultiplier     float64
	RateLimitDelay        time.Duration
	ServerErrorDelay      time.Duration
	CacheTTL              time.Duration
	VerifyModel           bool
	RequestTimeout        time.Duration
	Temperature           float64
	MaxTokens             int
	TopP                  float64
}

type PipelineConfig struct {
	MaxChunks          int
	PreferredChunkSize int
	MinChunkSize       int
	ChunkTemperature   float64
	ChunkMaxTokens     int
	CombineTemperature float64
	CombineMaxTokens   int
	AuditTemperature   float64
	AuditMaxTokens     int
	AppendTemperature  float64
	ExpandTemperature  float64
	DensityFloor       float64
	MinSummaryWords    int
	DuplicateFactor    float64
	SourceBound        int
}

type TranscriptionConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxFileSize int64
}

type MediaConfig struct {
	FFmpegPath  string
	YtDlpPath   string
	WorkDir     string
	MaxFileSize int64
	Timeout     time.Duration
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	openAIKey := getEnv("DEEPSEEK_API_KEY", getEnv("OPENAI_API_KEY", ""))

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			AuthRequired:       getEnvAsBool("AUTH_REQUIRED", false),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 500),
			RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Minute),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "deepseek"),
			LLMModel:        getEnv("LLM_MODEL", "deepseek-chat"),
			BaseURL:         getEnv("LLM_BASE_URL", ""),
			OpenAIAPIKey:    openAIKey,
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			GeminiAPIKey:    getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Completion: CompletionConfig{
			RequestsPerMinute:     getEnvAsInt("COMPLETION_RPM", 500),
			MaxConcurrentRequests: getEnvAsInt("COMPLETION_CONCURRENCY", 50),
			MaxRetries:            getEnvAsInt("COMPLETION_MAX_RETRIES", 3),
			BaseDelay:             getEnvAsDuration("COMPLETION_BASE_DELAY", time.Second),
			MaxDelay:              getEnvAsDuration("COMPLETION_MAX_DELAY", 10*time.Second),
			BackoffMultiplier:     getEnvAsFloat("COMPLETION_BACKOFF_MULTIPLIER", 2),
			RateLimitDelay:        getEnvAsDuration("COMPLETION_RATE_LIMIT_DELAY", 2*time.Second),
			ServerErrorDelay:      getEnvAsDuration("COMPLETION_SERVER_ERROR_DELAY", 1500*time.Millisecond),
			CacheTTL:              getEnvAsDuration("COMPLETION_CACHE_TTL", 30*time.Second),
			VerifyModel:           getEnvAsBool("COMPLETION_VERIFY_MODEL", true),
			RequestTimeout:        getEnvAsDuration("COMPLETION_REQUEST_TIMEOUT", 25*time.Second),
			Temperature:           getEnvAsFloat("COMPLETION_TEMPERATURE", 0.7),
			MaxTokens:             getEnvAsInt("COMPLETION_MAX_TOKENS", 150),
			TopP:                  getEnvAsFloat("COMPLETION_TOP_P", 0.9),
		},
		Pipeline: PipelineConfig{
			MaxChunks:          getEnvAsInt("PIPELINE_MAX_CHUNKS", 100),
			PreferredChunkSize: getEnvAsInt("PIPELINE_PREFERRED_CHUNK_SIZE", 11200),
			MinChunkSize:       getEnvAsInt("PIPELINE_MIN_CHUNK_SIZE", 5600),
			ChunkTemperature:   getEnvAsFloat("PIPELINE_CHUNK_TEMPERATURE", 0.03),
			ChunkMaxTokens:     getEnvAsInt("PIPELINE_CHUNK_MAX_TOKENS", 800),
			CombineTemperature: getEnvAsFloat("PIPELINE_COMBINE_TEMPERATURE", 0.05),
			CombineMaxTokens:   getEnvAsInt("PIPELINE_COMBINE_MAX_TOKENS", 800),
			AuditTemperature:   getEnvAsFloat("PIPELINE_AUDIT_TEMPERATURE", 0),
			AuditMaxTokens:     getEnvAsInt("PIPELINE_AUDIT_MAX_TOKENS", 200),
			AppendTemperature:  getEnvAsFloat("PIPELINE_APPEND_TEMPERATURE", 0.05),
			ExpandTemperature:  getEnvAsFloat("PIPELINE_EXPAND_TEMPERATURE", 0.04),
			DensityFloor:       getEnvAsFloat("PIPELINE_DENSITY_FLOOR", 0.15),
			MinSummaryWords:    getEnvAsInt("PIPELINE_MIN_SUMMARY_WORDS", 3000),
			DuplicateFactor:    getEnvAsFloat("PIPELINE_DUPLICATE_FACTOR", 1.2),
			SourceBound:        getEnvAsInt("PIPELINE_SOURCE_BOUND", 120000),
		},
		Transcription: TranscriptionConfig{
			BaseURL:     getEnv("TRANSCRIPTION_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("TRANSCRIPTION_API_KEY", getEnv("OPENAI_API_KEY", "")),
			Model:       getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
			MaxFileSize: int64(getEnvAsInt("TRANSCRIPTION_MAX_MB", 25)) * 1024 * 1024,
		},
		Media: MediaConfig{
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			YtDlpPath:   getEnv("YTDLP_PATH", "yt-dlp"),
			WorkDir:     getEnv("MEDIA_WORK_DIR", os.TempDir()),
			MaxFileSize: int64(getEnvAsInt("MEDIA_MAX_MB", 500)) * 1024 * 1024,
			Timeout:     getEnvAsDuration("MEDIA_TIMEOUT", 5*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("1500ms") or a bare number of milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := strings.TrimSpace(getEnv(key, ""))
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
