package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "InvoiceAI", cfg.App.Name)
	assert.Equal(t, "0.1.0", cfg.App.Version)
	assert.Equal(t, 8000, cfg.App.Port)
	assert.Equal(t, AuthModeSupabase, cfg.Auth.Mode)
	assert.Equal(t, 5*time.Second, cfg.Auth.Timeout)
	assert.Equal(t, []string{"http://localhost:5174", "http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.AuthCacheEnabled())
	assert.Equal(t, "postgres://postgres:@localhost:5432/invoiceai?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_DatabaseURLOverride(t *testing.T) {
	t.Setenv("AUTH_MODE", AuthModeJWT)
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.ConnectionString())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "SupabaseMissingURL", env: map[string]string{"AUTH_MODE": AuthModeSupabase, "SUPABASE_URL": "", "SUPABASE_ANON_KEY": ""}},
		{name: "JWTMissingSecret", env: map[string]string{"AUTH_MODE": AuthModeJWT, "SUPABASE_JWT_SECRET": ""}},
		{name: "UnknownMode", env: map[string]string{"AUTH_MODE": "ldap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAuthCacheEnabled(t *testing.T) {
	var cfg Config

	cfg.Cache.RedisURL = "redis://localhost:6379/0"
	assert.False(t, cfg.AuthCacheEnabled())

	cfg.Cache.AuthTTL = time.Minute
	assert.True(t, cfg.AuthCacheEnabled())
}
