package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Forecast ForecastConfig `yaml:"forecast"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// Addr returns host:port for net/http.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SourceConfig selects where revenue and expense records come from
type SourceConfig struct {
	Type           string          `yaml:"type"` // "graphql", "postgres" or "snowflake"
	GraphQLURL     string          `yaml:"graphql_url"`
	TimeoutSeconds int             `yaml:"timeout_seconds"`
	MaxRetries     int             `yaml:"max_retries"`
	Snowflake      SnowflakeConfig `yaml:"snowflake"`
}

// SnowflakeConfig holds warehouse credentials for the snowflake source.
// ConnectionString, when set, takes precedence over the individual fields.
type SnowflakeConfig struct {
	ConnectionString string `yaml:"connection_string"`
	Account          string `yaml:"account"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	Database         string `yaml:"database"`
	Schema           string `yaml:"schema"`
	Warehouse        string `yaml:"warehouse"`
}

// Timeout returns the upstream request timeout
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL settings, used by the postgres source and
// the advisory-lock fallback
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// RedisConfig holds Redis settings for the snapshot store and refresh lock
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Enabled reports whether Redis is configured
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// SnapshotConfig controls snapshot storage and refresh
type SnapshotConfig struct {
	Store                  string `yaml:"store"` // "memory" or "redis"
	Retain                 int    `yaml:"retain"`
	TTLHours               int    `yaml:"ttl_hours"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
	LockTTLSeconds         int    `yaml:"lock_ttl_seconds"`
}

// RefreshInterval returns the background refresh period; zero disables it
func (c SnapshotConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// TTL returns how long a stored snapshot is kept
func (c SnapshotConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// LockTTL returns the refresh lock lease
func (c SnapshotConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// ForecastConfig holds request defaults for the forecast engine
type ForecastConfig struct {
	DefaultHorizon      int    `yaml:"default_horizon"`
	MaxHorizon          int    `yaml:"max_horizon"`
	DefaultModel        string `yaml:"default_model"`
	DefaultPeriod       string `yaml:"default_period"`
	MovingAverageWindow int    `yaml:"moving_average_window"`
}

// StorageConfig holds forecast export storage configuration
type StorageConfig struct {
	Type                  string `yaml:"type"` // "local" or "aws"
	LocalPath             string `yaml:"local_path"`
	S3Bucket              string `yaml:"s3_bucket"`
	S3Prefix              string `yaml:"s3_prefix"`
	DynamoDBTable         string `yaml:"dynamodb_table"`
	AWSRegion             string `yaml:"aws_region"`
	AWSProfile            string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	AccessKeyID           string `yaml:"access_key_id"`
	SecretKey             string `yaml:"secret_access_key"`
	ExportIntervalMinutes int    `yaml:"export_interval_minutes"` // worker scheduled export, 0 disables
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda use the task role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// ExportInterval returns the worker export period
func (c StorageConfig) ExportInterval() time.Duration {
	return time.Duration(c.ExportIntervalMinutes) * time.Minute
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level         string `yaml:"level"`
	RedactSecrets *bool  `yaml:"redact_secrets"`
}

// Redact reports whether secrets are masked in logs (default true)
func (c LoggingConfig) Redact() bool {
	return c.RedactSecrets == nil || *c.RedactSecrets
}

// CORSConfig lists browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
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

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8050
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = "graphql"
	}
	if cfg.Source.GraphQLURL == "" {
		cfg.Source.GraphQLURL = "http://localhost:3000/api/graphql"
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 30
	}
	if cfg.Source.MaxRetries == 0 {
		cfg.Source.MaxRetries = 3
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "cashflow"
	}
	if cfg.Snapshot.Store == "" {
		cfg.Snapshot.Store = "memory"
	}
	if cfg.Snapshot.Retain == 0 {
		cfg.Snapshot.Retain = 10
	}
	if cfg.Snapshot.TTLHours == 0 {
		cfg.Snapshot.TTLHours = 24
	}
	if cfg.Snapshot.LockTTLSeconds == 0 {
		cfg.Snapshot.LockTTLSeconds = 60
	}
	if cfg.Forecast.DefaultHorizon == 0 {
		cfg.Forecast.DefaultHorizon = 30
	}
	if cfg.Forecast.MaxHorizon == 0 {
		cfg.Forecast.MaxHorizon = 3650
	}
	if cfg.Forecast.DefaultModel == "" {
		cfg.Forecast.DefaultModel = "linear"
	}
	if cfg.Forecast.DefaultPeriod == "" {
		cfg.Forecast.DefaultPeriod = "daily"
	}
	if cfg.Forecast.MovingAverageWindow == 0 {
		cfg.Forecast.MovingAverageWindow = 5
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}
	if cfg.Storage.S3Prefix == "" {
		cfg.Storage.S3Prefix = "forecasts"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-west-2"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8050"}
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
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
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		cfg.Source.Type = v
	}
	if v := os.Getenv("LEDGER_GRAPHQL_URL"); v != "" {
		cfg.Source.GraphQLURL = v
	}
	// Database override (ECS config.yaml carries local defaults)
	if v := os.Getenv("SNOWFLAKE_CONNECTION_STRING"); v != "" {
		cfg.Source.Snowflake.ConnectionString = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Source.Snowflake.Password = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		if cfg.Snapshot.Store == "memory" {
			cfg.Snapshot.Store = "redis"
		}
	}
	if v := os.Getenv("SNAPSHOT_STORE"); v != "" {
		cfg.Snapshot.Store = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
	if v := os.Getenv("DYNAMODB_TABLE"); v != "" {
		cfg.Storage.DynamoDBTable = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Storage.AWSRegion = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}

	return cfg, nil
}
