package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "groupbuy-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "groupbuy", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)
		assert.Equal(t, cfg.JWT.Secret, cfg.JWT.RefreshSecret)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, 30*24*time.Hour, cfg.GroupBuy.MaxDuration)
		assert.Equal(t, 3, cfg.GroupBuy.JoinRetries)
		assert.True(t, cfg.Settlement.Enabled)
		assert.Equal(t, "@every 30s", cfg.Settlement.Schedule)
		assert.True(t, cfg.Outbox.Enabled)
		assert.False(t, cfg.Storage.Enabled)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "groupbuy-backend", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with GB prefix", func(t *testing.T) {
		t.Setenv("GB_APP_NAME", "test-app")
		t.Setenv("GB_APP_PORT", "9000")
		t.Setenv("GB_DATABASE_HOST", "testdb.local")
		t.Setenv("GB_DATABASE_PORT", "5433")
		t.Setenv("GB_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("GB_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("GB_GROUPBUY_MAX_DURATION", "72h")
		t.Setenv("GB_SETTLEMENT_ENABLED", "false")
		t.Setenv("GB_SETTLEMENT_WORKERS", "8")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 72*time.Hour, cfg.GroupBuy.MaxDuration)
		assert.False(t, cfg.Settlement.Enabled)
		assert.Equal(t, 8, cfg.Settlement.Workers)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("GB_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("GB_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("rejects enabled storage without bucket", func(t *testing.T) {
		t.Setenv("GB_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		applyDefaults(cfg)
		cfg.JWT.Secret = "a-very-long-production-secret-value-0001"
		cfg.Database.Password = "s3cret"
		cfg.HTTP.CORSAllowOrigins = []string{"https://groupbuy.example.com"}
		return cfg
	}

	t.Run("accepts a hardened config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("requires a jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = ""
		assert.ErrorContains(t, cfg.validate(), "jwt.secret")
	})

	t.Run("rejects the development secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = DefaultJWTSecret
		assert.ErrorContains(t, cfg.validate(), "jwt.secret")
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.validate(), "32 characters")
	})

	t.Run("requires a database password", func(t *testing.T) {
		cfg := base()
		cfg.Database.Password = ""
		assert.ErrorContains(t, cfg.validate(), "database.password")
	})

	t.Run("rejects wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.ErrorContains(t, cfg.validate(), "cors")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.ErrorContains(t, cfg.validate(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "gb",
		Password: "p@ss/word",
		DBName:   "groupbuy",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://gb:p%40ss%2Fword@db:5432/groupbuy?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
