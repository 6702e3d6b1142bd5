package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:test.db")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.CORSOrigins)
	assert.Empty(t, cfg.HTTP.TrustedProxies)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "sandbox", cfg.Paddle.Environment)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_DSN", "postgres://localhost/store")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.HTTP.TrustedProxies)
}

func TestLoadLegacyDSN(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("DB_DSN_PRIMARY", "root:pw@tcp(127.0.0.1:3306)/store?parseTime=true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/store?parseTime=true", cfg.Database.DSN)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	body := "database:\n  driver: sqlite\n  dsn: file:store.db\nhttp:\n  addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "file:store.db", cfg.Database.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "unknown driver",
			cfg:     Config{Database: DatabaseConfig{Driver: "oracle", DSN: "x"}},
			wantErr: "unsupported database driver",
		},
		{
			name:    "missing dsn",
			cfg:     Config{Database: DatabaseConfig{Driver: "mysql"}},
			wantErr: "database.dsn",
		},
		{
			name: "production without secret",
			cfg: Config{
				App:      AppConfig{Env: "production"},
				Database: DatabaseConfig{Driver: "mysql", DSN: "x"},
			},
			wantErr: "jwt_secret",
		},
		{
			name: "production with default admin password",
			cfg: Config{
				App:      AppConfig{Env: "production"},
				Database: DatabaseConfig{Driver: "mysql", DSN: "x"},
				Auth:     AuthConfig{JWTSecret: "s3cret"},
				Seed:     SeedConfig{AdminEmail: "admin@example.com", AdminPassword: "admin123"},
			},
			wantErr: "seed.admin_password",
		},
		{
			name: "production without admin password",
			cfg: Config{
				App:      AppConfig{Env: "production"},
				Database: DatabaseConfig{Driver: "mysql", DSN: "x"},
				Auth:     AuthConfig{JWTSecret: "s3cret"},
			},
			wantErr: "seed.admin_password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProduction(t *testing.T) {
	cfg := Config{
		App:      AppConfig{Env: "production"},
		Database: DatabaseConfig{Driver: "Postgres", DSN: "x"},
		Auth:     AuthConfig{JWTSecret: "s3cret"},
		Seed:     SeedConfig{AdminEmail: "admin@example.com", AdminPassword: "a-long-unique-password"},
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres", cfg.Database.Driver)

	// Development keeps the sample password.
	dev := Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "x"},
		Seed:     SeedConfig{AdminPassword: "admin123"},
	}
	require.NoError(t, dev.Validate())
	assert.Equal(t, devJWTSecret, dev.Auth.JWTSecret)
}
