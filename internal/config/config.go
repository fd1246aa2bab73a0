package config

import (
	"os"
	"strconv"
)

type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	Storage      StorageConfig
	Redis        RedisConfig
	ShareBaseURL string
	FrontendURL  string
}

func LoadConfig() *Config {
	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ShareBaseURL: getEnv("SHARE_BASE_URL", "https://kadraly.com/e/"),
		FrontendURL:  os.Getenv("FRONTEND_URL"),
	}

	cfg.Storage.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.Storage.Region = getEnv("S3_REGION", "auto")
	cfg.Storage.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.Storage.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.Storage.Bucket = os.Getenv("S3_BUCKET")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.Redis.DB = db
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
