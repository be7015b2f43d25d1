package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds everything the server reads from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string
	CORSOrigins []string

	DatabaseURL string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Empty RabbitURL disables work-queue publication
	RabbitURL string

	// Storage backend: "local" (default) or "s3"
	StorageBackend string
	UploadsDir     string
	PublicBaseURL  string
	AWSRegion      string
	AWSBucket      string
	CDNBaseURL     string
}

// Load reads configuration from environment variables with sensible
// development defaults. Only the database URL is composed from parts
// when DATABASE_URL itself is not set.
func Load() *Config {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "server.log"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		StorageBackend: getEnvOrDefault("STORAGE_BACKEND", "local"),
		UploadsDir:     getEnvOrDefault("UPLOADS_DIR", "./uploads"),
		PublicBaseURL:  getEnvOrDefault("PUBLIC_BASE_URL", ""),
		AWSRegion:      os.Getenv("AWS_REGION"),
		AWSBucket:      os.Getenv("AWS_BUCKET"),
		CDNBaseURL:     os.Getenv("CDN_BASE_URL"),
	}

	origins := getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnvOrDefault("DB_HOST", "localhost"),
			getEnvOrDefault("DB_PORT", "5432"),
			getEnvOrDefault("DB_USER", "postgres"),
			getEnvOrDefault("DB_PASSWORD", "postgres"),
			getEnvOrDefault("DB_NAME", "comments"),
			getEnvOrDefault("DB_SSLMODE", "disable"),
		)
	}

	return cfg
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
