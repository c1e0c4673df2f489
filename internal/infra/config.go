package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Persistence modes for generation tracking. Best-effort swallows record
// store failures so the user-facing request can still succeed; strict
// surfaces them.
const (
	PersistenceBestEffort = "best-effort"
	PersistenceStrict     = "strict"
)

// Storage backend selectors.
const (
	StorageBackendFilesystem = "filesystem"
	StorageBackendMinio      = "minio"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string
	Debug  bool

	StabilityAPIKey   string
	StabilityBaseURL  string
	GenerationTimeout time.Duration

	DatabaseURL     string
	PersistenceMode string

	MaxImageSizeMB    int
	AllowedImageTypes []string
	MaxImageDimension int
	LogoPath          string

	StorageBackend  string
	StorageBasePath string
	StorageBaseURL  string
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioBucket     string
	MinioUseSSL     bool
	MinioPublicBase string

	CORSOrigins     []string
	RateLimitPerMin int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3001"),
		Debug:  getEnvBool("DEBUG", false),

		StabilityAPIKey:   os.Getenv("STABILITY_API_KEY"),
		StabilityBaseURL:  getEnv("STABILITY_BASE_URL", "https://api.stability.ai/v2beta/stable-image"),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 30)),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		PersistenceMode: getEnv("PERSISTENCE_MODE", PersistenceBestEffort),

		MaxImageSizeMB:    getEnvInt("MAX_IMAGE_SIZE_MB", 10),
		AllowedImageTypes: getEnvList("ALLOWED_IMAGE_TYPES", []string{"image/jpeg", "image/png", "image/webp"}),
		MaxImageDimension: getEnvInt("MAX_IMAGE_DIMENSION", 1024),
		LogoPath:          getEnv("LOGO_PATH", "static/gnb_logo.png"),

		StorageBackend:  getEnv("STORAGE_BACKEND", StorageBackendFilesystem),
		StorageBasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		StorageBaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:3001/storage"),
		MinioEndpoint:   os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:     getEnv("MINIO_BUCKET", "dog-images"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		MinioPublicBase: os.Getenv("MINIO_PUBLIC_BASE"),

		CORSOrigins:     getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.StabilityAPIKey == "" {
		return nil, fmt.Errorf("STABILITY_API_KEY is required")
	}

	switch cfg.PersistenceMode {
	case PersistenceBestEffort, PersistenceStrict:
	default:
		return nil, fmt.Errorf("PERSISTENCE_MODE must be %q or %q", PersistenceBestEffort, PersistenceStrict)
	}

	switch cfg.StorageBackend {
	case StorageBackendFilesystem:
	case StorageBackendMinio:
		if cfg.MinioEndpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required for the minio storage backend")
		}
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be %q or %q", StorageBackendFilesystem, StorageBackendMinio)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
