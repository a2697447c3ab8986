package config

import (
	"fmt"
	"strings"
	"sync"

	"slotswap-api/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Queue    QueueConfig    `mapstructure:"queue"`
	S3       S3Config       `mapstructure:"s3"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	AccessTokenSecret string `mapstructure:"access_token_secret"`
	AccessTokenTTL    int    `mapstructure:"access_token_ttl"` // minutes
}

type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type S3Config struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env (if present) and environment variables into the config
// singleton. Environment keys use underscores: SERVER_PORT, DATABASE_HOST, ...
func Load() error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "slotswap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.access_token_ttl", 60*24)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("log.level", "info")

	// Viper only binds env vars it has seen; touch every key explicitly.
	for _, key := range []string{
		"server.host", "server.port",
		"database.host", "database.port", "database.user", "database.password",
		"database.dbname", "database.sslmode",
		"redis.addr", "redis.password", "redis.db",
		"auth.access_token_secret", "auth.access_token_ttl",
		"queue.concurrency",
		"s3.region", "s3.bucket", "s3.endpoint", "s3.access_key_id",
		"s3.secret_access_key", "s3.public_base_url",
		"log.level",
	} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Error("Config:Load:Unmarshal:Error:", err)
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.AccessTokenSecret == "" {
		return fmt.Errorf("AUTH_ACCESS_TOKEN_SECRET is required")
	}

	mu.Lock()
	instance = &cfg
	mu.Unlock()

	return nil
}

// Get returns the loaded config. Panics if Load was never called; use GetSafe
// in paths that can run before initialization.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set replaces the config singleton. Test hook.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
