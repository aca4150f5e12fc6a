package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppURL                  string
	DatabaseDSN             string
	RateLimit               int
	RedisAddr               string
	TemplateCachePrefix     string
	TemplateCacheTTLSeconds int
	LogLevel                string
	LogPretty               bool
	PlatformAdmins          []string
	ShutdownTimeoutSeconds  int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "")
	redisPort := getEnv("REDIS_PORT", "6379")

	redisAddr := ""
	if redisHost != "" {
		redisAddr = fmt.Sprintf("%s:%s", redisHost, redisPort)
	}

	cfg := Config{
		AppURL:                  fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDSN:             getEnv("DATABASE_DSN", "task-lifecycle.db"),
		RateLimit:               getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		RedisAddr:               redisAddr,
		TemplateCachePrefix:     getEnv("TEMPLATE_CACHE_PREFIX", "task-lifecycle:template:"),
		TemplateCacheTTLSeconds: getEnvAsInt("TEMPLATE_CACHE_TTL_SECONDS", 300),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogPretty:               getEnv("LOG_PRETTY", "false") == "true",
		PlatformAdmins:          getEnvAsList("PLATFORM_ADMINS"),
		ShutdownTimeoutSeconds:  getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.TemplateCacheTTLSeconds <= 0 {
		log.Fatal("TEMPLATE_CACHE_TTL_SECONDS must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		log.Fatal("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
