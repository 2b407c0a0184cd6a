package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/config"
)

func TestLoad(t *testing.T) {
	type testCase struct {
		name    string
		env     map[string]string
		verify  func(t *testing.T, cfg *config.Config)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Defaults",
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, 8080, cfg.App.Port)
				assert.Equal(t, config.DriverPostgres, cfg.Storage.Driver)
				assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
				assert.Equal(t, "postgres://postgres:@localhost:5432/pennywise?sslmode=disable", cfg.ConnectionString())
			},
		},
		{
			name: "Overrides",
			env: map[string]string{
				"STORAGE_DRIVER":       "memory",
				"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
				"AUTH_TOKEN_TTL":       "15m",
			},
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
				assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
			},
		},
		{
			name:    "UnknownDriver",
			env:     map[string]string{"STORAGE_DRIVER": "sqlite"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}
