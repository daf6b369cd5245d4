package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Lookup    LookupConfig    `yaml:"lookup"`
	DynamoDB  DynamoDBConfig  `yaml:"dynamodb"`
	Bedrock   BedrockConfig   `yaml:"bedrock"`
	AWS       AWSConfig       `yaml:"aws"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the pool connection lifetime as a duration
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds the optional analytics cache settings
type RedisConfig struct {
	URL             string `yaml:"url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"` // 0 disables memoization
}

// CacheTTL returns the memoization TTL as a duration
func (c RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AnalyticsConfig controls the reporting pipeline
type AnalyticsConfig struct {
	Source              string   `yaml:"source"` // "postgres" or "dynamodb"
	SpikeWindow         int      `yaml:"spike_window"`
	ZThreshold          float64  `yaml:"z_threshold"`
	MonitoredCategories []string `yaml:"monitored_categories"`
	DefaultFrom         string   `yaml:"default_from"` // YYYY-MM-DD
}

// DefaultFromTime parses DefaultFrom, falling back to 2020-01-01 UTC.
func (c AnalyticsConfig) DefaultFromTime() time.Time {
	if t, err := time.Parse("2006-01-02", c.DefaultFrom); err == nil {
		return t
	}
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
}

// DefaultMonitoredCategories is the alerting allowlist used when none is configured.
var DefaultMonitoredCategories = []string{
	"Cough Syrup",
	"Painkiller",
	"Antibiotic",
	"Antihistamine",
}

// LookupConfig locates the static medicine lookup table. When S3Bucket is
// set the table is read from S3; otherwise from Path on local disk.
type LookupConfig struct {
	Path     string `yaml:"path"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Key    string `yaml:"s3_key"`
}

// UseS3 reports whether the lookup table should be fetched from S3
func (c LookupConfig) UseS3() bool {
	return c.S3Bucket != "" && c.S3Key != ""
}

// DynamoDBConfig holds the document-table settings for the dynamodb source
type DynamoDBConfig struct {
	Table string `yaml:"table"`
}

// BedrockConfig holds the narrative summarizer settings
type BedrockConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ModelID        string `yaml:"model_id"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c BedrockConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AWSConfig holds shared AWS client settings
type AWSConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"` // Empty uses the default credential chain
	SecretKey string `yaml:"secret_key"`
	Profile   string `yaml:"profile"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 3
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 5
	}
	if cfg.Analytics.Source == "" {
		cfg.Analytics.Source = "postgres"
	}
	if cfg.Analytics.SpikeWindow == 0 {
		cfg.Analytics.SpikeWindow = 14
	}
	if cfg.Analytics.ZThreshold == 0 {
		cfg.Analytics.ZThreshold = 2.0
	}
	if len(cfg.Analytics.MonitoredCategories) == 0 {
		cfg.Analytics.MonitoredCategories = append([]string(nil), DefaultMonitoredCategories...)
	}
	if cfg.Analytics.DefaultFrom == "" {
		cfg.Analytics.DefaultFrom = "2020-01-01"
	}
	if cfg.Lookup.Path == "" {
		cfg.Lookup.Path = "data/medicine_lookup.json"
	}
	if cfg.Bedrock.ModelID == "" {
		cfg.Bedrock.ModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	if cfg.Bedrock.MaxTokens == 0 {
		cfg.Bedrock.MaxTokens = 512
	}
	if cfg.Bedrock.TimeoutSeconds == 0 {
		cfg.Bedrock.TimeoutSeconds = 30
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("ANALYTICS_SOURCE"); v != "" {
		cfg.Analytics.Source = v
	}
	if v := os.Getenv("LOOKUP_PATH"); v != "" {
		cfg.Lookup.Path = v
	}
	if v := os.Getenv("LOOKUP_S3_BUCKET"); v != "" {
		cfg.Lookup.S3Bucket = v
	}
	if v := os.Getenv("LOOKUP_S3_KEY"); v != "" {
		cfg.Lookup.S3Key = v
	}
	if v := os.Getenv("DYNAMODB_TABLE"); v != "" {
		cfg.DynamoDB.Table = v
	}
	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.Bedrock.ModelID = v
		cfg.Bedrock.Enabled = true
	}

	// AWS overrides
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.AWS.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.AWS.SecretKey = v
	}

	return cfg, nil
}
