package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AI        AIConfig        `mapstructure:"ai"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type AppConfig struct {
	Name      string `mapstructure:"name" validate:"required"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig selects between postgres (lib/pq pool under gorm) and sqlite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	// Path is the sqlite file, ":memory:" for an in-process database.
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the connection string for the postgres driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// Addr returns host:port for the Redis server.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// AIConfig configures the recipe generation provider.
type AIConfig struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=openai gemini"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model       string        `mapstructure:"model" validate:"required"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `mapstructure:"max_tokens" validate:"gt=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"min=1s,max=30s"`

	ImagesEnabled bool   `mapstructure:"images_enabled"`
	ImageBaseURL  string `mapstructure:"image_base_url" validate:"omitempty,url"`
	ImageModel    string `mapstructure:"image_model"`
	ImageSize     string `mapstructure:"image_size"`
}

// MaskedKey returns the API key with everything but its edges hidden.
func (a AIConfig) MaskedKey() string {
	if len(a.APIKey) <= 8 {
		return "****"
	}
	return a.APIKey[:4] + "..." + a.APIKey[len(a.APIKey)-4:]
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"min=1"`
}

// UploadConfig controls recipe image uploads.
type UploadConfig struct {
	MaxImageBytes int64  `mapstructure:"max_image_bytes" validate:"gt=0"`
	MaxDimension  uint   `mapstructure:"max_dimension" validate:"gt=0"`
	Storage       string `mapstructure:"storage" validate:"oneof=local s3"`
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	S3Endpoint    string `mapstructure:"s3_endpoint"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests" validate:"gt=0"`
	Window   time.Duration `mapstructure:"window" validate:"gt=0"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoadConfig builds a Config from defaults, an optional config file, the
// environment (including a .env file) and Docker secrets, then validates it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	env := GetEnvironment()
	v := viper.New()
	setDefaults(v, env)
	bindEnv(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{Environment: env}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("app.name", "recipe-manager")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.migrations_dir", "migrations")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "recipes")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "recipes.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_tokens", 1500)
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.images_enabled", false)
	v.SetDefault("ai.image_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.image_model", "dall-e-3")
	v.SetDefault("ai.image_size", "1024x1024")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("upload.max_image_bytes", 5*1024*1024)
	v.SetDefault("upload.max_dimension", 1600)
	v.SetDefault("upload.storage", "local")
	v.SetDefault("upload.local_dir", "uploads")
	v.SetDefault("upload.public_base_url", "/uploads")
	v.SetDefault("upload.s3_bucket", "")
	v.SetDefault("upload.s3_region", "")
	v.SetDefault("upload.s3_endpoint", "")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")

	if env == Test || env == CI {
		v.SetDefault("database.driver", "sqlite")
		v.SetDefault("database.path", "file::memory:?cache=shared")
		v.SetDefault("app.log_level", "debug")
		v.SetDefault("app.log_format", "console")
		v.SetDefault("rate_limit.enabled", false)
	}
	if env == Development {
		v.SetDefault("app.log_format", "console")
	}
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the docker-compose files and CI.
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("database.host", "DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "DATABASE_NAME", "DB_NAME")
	_ = v.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE", "DB_SSL_MODE")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("app.log_level", "APP_LOG_LEVEL", "LOG_LEVEL")
}

// applySecrets fills sensitive values that were not provided through the
// environment from the secrets directory.
func applySecrets(cfg *Config) {
	if cfg.Database.Password == "" {
		cfg.Database.Password = readSecret("db_password")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = readSecret("redis_password")
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = readSecret("ai_api_key")
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
