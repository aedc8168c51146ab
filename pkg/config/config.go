package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Media     MediaConfig
	WorkItems WorkItemsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig describes how tokens minted by the external identity provider are verified.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs the public page cache and its revalidation.
type CacheConfig struct {
	Enabled bool
	PageTTL time.Duration
}

// StorageConfig configures the object storage buckets.
type StorageConfig struct {
	BaseDir          string
	PublicBaseURL    string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// MediaConfig tunes the upload pipeline and the pending-row reconciler.
type MediaConfig struct {
	PendingTTL        time.Duration
	ReconcileInterval time.Duration
	ThumbnailWidth    int
	WorkerConcurrency int
	WorkerRetries     int
}

// WorkItemsConfig toggles optional work item behaviour.
type WorkItemsConfig struct {
	EnforceVersionCheck bool
	LogProgramTasks     bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return FromViper(v), nil
}

// FromViper materialises a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_PAGE_CACHE"),
		PageTTL: parseDuration(v.GetString("PAGE_CACHE_TTL"), 5*time.Minute),
	}

	maxSize := v.GetInt64("STORAGE_MAX_FILE_SIZE")
	if maxSize <= 0 {
		maxSize = 20 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		BaseDir:          v.GetString("STORAGE_DIR"),
		PublicBaseURL:    v.GetString("STORAGE_PUBLIC_BASE_URL"),
		SignedURLSecret:  v.GetString("STORAGE_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("STORAGE_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("STORAGE_ALLOWED_MIME_TYPES")),
	}

	cfg.Media = MediaConfig{
		PendingTTL:        parseDuration(v.GetString("MEDIA_PENDING_TTL"), time.Hour),
		ReconcileInterval: parseDuration(v.GetString("MEDIA_RECONCILE_INTERVAL"), 15*time.Minute),
		ThumbnailWidth:    v.GetInt("MEDIA_THUMBNAIL_WIDTH"),
		WorkerConcurrency: v.GetInt("MEDIA_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("MEDIA_WORKER_RETRIES"),
	}

	cfg.WorkItems = WorkItemsConfig{
		EnforceVersionCheck: v.GetBool("ENABLE_STATUS_VERSION_CHECK"),
		LogProgramTasks:     v.GetBool("LOG_PROGRAM_TASKS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ormawa")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PAGE_CACHE", true)
	v.SetDefault("PAGE_CACHE_TTL", "5m")

	v.SetDefault("STORAGE_DIR", "./storage")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "/files")
	v.SetDefault("STORAGE_SIGNED_URL_SECRET", "dev_storage_secret")
	v.SetDefault("STORAGE_SIGNED_URL_TTL", "30m")
	v.SetDefault("STORAGE_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("STORAGE_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,image/svg+xml,video/mp4,application/pdf,application/zip")

	v.SetDefault("MEDIA_PENDING_TTL", "1h")
	v.SetDefault("MEDIA_RECONCILE_INTERVAL", "15m")
	v.SetDefault("MEDIA_THUMBNAIL_WIDTH", 320)
	v.SetDefault("MEDIA_WORKER_CONCURRENCY", 1)
	v.SetDefault("MEDIA_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_STATUS_VERSION_CHECK", false)
	v.SetDefault("LOG_PROGRAM_TASKS", false)
}

// SetDefaults exposes the default table so CLIs sharing the same env keys stay consistent.
func SetDefaults(v *viper.Viper) {
	setDefaults(v)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
