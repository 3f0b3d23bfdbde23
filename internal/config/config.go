package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	DBPath         string
	AttachmentPath string
	MaxUploadBytes int64
	LogLevel       string
	LogFormat      string
	LogFile        string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present in the working directory.
func Load() (*Config, error) {
	// A missing .env is fine; the environment is the source of truth.
	_ = godotenv.Load()

	maxUpload, err := getEnvInt64("MAX_UPLOAD_BYTES", 50*1024*1024)
	if err != nil {
		return nil, err
	}

	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "/data/stockroom.db"),
		AttachmentPath: getEnv("ATTACHMENT_PATH", "/data/attachments"),
		MaxUploadBytes: maxUpload,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		LogFile:        getEnv("LOG_FILE", ""),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}
