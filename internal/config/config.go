package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL           string
	HTTPPort              string
	LogLevel              string
	LogMode               string
	JWTSecret             string
	StorageBackend        string // sqlite, redis or memory
	RedisAddr             string
	StorageQuotaBytes     int // per profile; not enforced on redis
	SeedDemoConversations bool
	CompatWeightsPath     string
	ChatStoreIdleTTL      time.Duration
}

var AppConfig Config

func LoadConfig() error {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		DatabaseURL:           getEnv("DATABASE_URL", "livix.db"),
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
		LogMode:               getEnv("LOG_MODE", "development"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		StorageBackend:        getEnv("STORAGE_BACKEND", "sqlite"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		StorageQuotaBytes:     getEnvAsInt("STORAGE_QUOTA_BYTES", 5*1024*1024),
		SeedDemoConversations: getEnvAsBool("SEED_DEMO_CONVERSATIONS", true),
		CompatWeightsPath:     getEnv("COMPAT_WEIGHTS_PATH", ""),
		ChatStoreIdleTTL:      getEnvAsDuration("CHAT_STORE_IDLE_TTL", 30*time.Minute),
	}

	return AppConfig.Validate()
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.StorageBackend {
	case "sqlite", "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
