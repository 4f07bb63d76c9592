package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Tasks     TasksConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig selects the greeting store. An empty URI means in-memory.
type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// RedisConfig selects the task queue backend. An empty host means in-memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type TasksConfig struct {
	QueueKey    string
	MaxAttempts int
	Poll        time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
	// SignEnabled throttles /sign per guestbook to SignRPS.
	SignEnabled bool
	SignRPS     float64
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string { return s.Host + ":" + s.Port }

// Addr returns host:port of the Redis server.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "guestbook")
	v.SetDefault("MONGODB_COLLECTION", "greetings")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TASKS_QUEUE_KEY", "guestbook:tasks")
	v.SetDefault("TASKS_MAX_ATTEMPTS", 5)
	v.SetDefault("TASKS_POLL_SECONDS", 1)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("SIGN_LIMIT_ENABLED", false)
	v.SetDefault("SIGN_LIMIT_RPS", 1.0)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Tasks: TasksConfig{
			QueueKey:    v.GetString("TASKS_QUEUE_KEY"),
			MaxAttempts: v.GetInt("TASKS_MAX_ATTEMPTS"),
			Poll:        time.Duration(v.GetInt("TASKS_POLL_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			SignEnabled:   v.GetBool("SIGN_LIMIT_ENABLED"),
			SignRPS:       v.GetFloat64("SIGN_LIMIT_RPS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
	return cfg, nil
}
