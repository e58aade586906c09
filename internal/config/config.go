package config

import (
	"fmt"
	"os"
	"time"
)

// Config collects everything the service reads from the environment. It is
// loaded once in main before any component starts; nothing re-reads the
// environment afterwards.
type Config struct {
	AppPort string
	TempDir string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	NatsURL string

	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicBase   string
	S3UsePathStyle bool
}

func Load() (*Config, error) {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "8001"),
		TempDir: getEnv("TEMP_DIR", os.TempDir()),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		NatsURL: getEnv("NATS_URL", "nats://localhost:4222"),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:       os.Getenv("S3_BUCKET_NAME"),
		S3AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3PublicBase:   os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle: os.Getenv("S3_USE_PATH_STYLE") == "true",
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return cfg, nil
}

// DatabaseURL assembles the postgres connection string the same way for the
// server and the migrate subcommand.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
