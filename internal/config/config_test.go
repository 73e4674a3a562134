package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

source:
  type: "postgres"
  graphql_url: "http://ledger:3000/api/graphql"
  timeout_seconds: 45
  max_retries: 5

database:
  url: "postgres://app:pw@db:5432/ledger?sslmode=disable"

redis:
  url: "redis://cache:6379/0"
  key_prefix: "test"

snapshot:
  store: "redis"
  retain: 3
  ttl_hours: 6
  refresh_interval_seconds: 300
  lock_ttl_seconds: 30

forecast:
  default_horizon: 14
  max_horizon: 365
  default_model: "poly2"
  default_period: "weekly"
  moving_average_window: 7

storage:
  type: "aws"
  s3_bucket: "exports"
  dynamodb_table: "forecast-runs"

logging:
  level: "debug"
  redact_secrets: false

cors:
  allowed_origins: ["https://dash.example.com"]
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())

	assert.Equal(t, "postgres", cfg.Source.Type)
	assert.Equal(t, "http://ledger:3000/api/graphql", cfg.Source.GraphQLURL)
	assert.Equal(t, 45*time.Second, cfg.Source.Timeout())
	assert.Equal(t, 5, cfg.Source.MaxRetries)

	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "test", cfg.Redis.KeyPrefix)

	assert.Equal(t, "redis", cfg.Snapshot.Store)
	assert.Equal(t, 3, cfg.Snapshot.Retain)
	assert.Equal(t, 6*time.Hour, cfg.Snapshot.TTL())
	assert.Equal(t, 5*time.Minute, cfg.Snapshot.RefreshInterval())
	assert.Equal(t, 30*time.Second, cfg.Snapshot.LockTTL())

	assert.Equal(t, 14, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, 365, cfg.Forecast.MaxHorizon)
	assert.Equal(t, "poly2", cfg.Forecast.DefaultModel)
	assert.Equal(t, "weekly", cfg.Forecast.DefaultPeriod)
	assert.Equal(t, 7, cfg.Forecast.MovingAverageWindow)

	assert.Equal(t, "aws", cfg.Storage.Type)
	assert.Equal(t, "exports", cfg.Storage.S3Bucket)
	assert.Equal(t, "forecast-runs", cfg.Storage.DynamoDBTable)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Redact())
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  host: \"\"\n"))
	require.NoError(t, err)

	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "graphql", cfg.Source.Type)
	assert.Equal(t, "http://localhost:3000/api/graphql", cfg.Source.GraphQLURL)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout())
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "memory", cfg.Snapshot.Store)
	assert.Equal(t, time.Duration(0), cfg.Snapshot.RefreshInterval())
	assert.Equal(t, 30, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, "linear", cfg.Forecast.DefaultModel)
	assert.Equal(t, "daily", cfg.Forecast.DefaultPeriod)
	assert.Equal(t, 5, cfg.Forecast.MovingAverageWindow)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redact())
}

func TestLoadFromEnv(t *testing.T) {
	configPath := writeConfig(t, `
source:
  graphql_url: "http://file-url/api/graphql"
`)

	t.Setenv("LEDGER_GRAPHQL_URL", "http://env-url/api/graphql")
	t.Setenv("REDIS_URL", "redis://env-cache:6379/1")
	t.Setenv("DATABASE_URL", "postgres://env@db/ledger")
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://env-url/api/graphql", cfg.Source.GraphQLURL)
	assert.Equal(t, "redis://env-cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, "redis", cfg.Snapshot.Store, "a Redis URL switches the default memory store")
	assert.Equal(t, "postgres://env@db/ledger", cfg.Database.URL)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestGetAWSProfile(t *testing.T) {
	cfg := StorageConfig{AWSProfile: "ledger"}
	t.Setenv("AWS_PROFILE_OVERRIDE", "")
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	assert.Equal(t, "ledger", cfg.GetAWSProfile())

	t.Setenv("AWS_PROFILE_OVERRIDE", "iam")
	assert.Equal(t, "", cfg.GetAWSProfile())
}
