package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "signing-key"
	cfg.TOTPSecret = "totp-secret"
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 25*time.Minute, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 5*time.Minute, cfg.OTPValidityDuration)

	// secrets intentionally have no defaults
	assert.Empty(t, cfg.SecretKey)
	assert.Empty(t, cfg.TOTPSecret)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.SecretKey = ""
	require.Error(t, cfg.Validate(), "missing signing key must be fatal")

	cfg = validConfig()
	cfg.TOTPSecret = ""
	require.Error(t, cfg.Validate(), "missing TOTP secret must be fatal")

	cfg = validConfig()
	cfg.DatabaseDSN = ""
	require.Error(t, cfg.Validate(), "missing DSN must be fatal")

	cfg = validConfig()
	cfg.AccessTokenValidityDuration = cfg.RefreshTokenValidityDuration
	require.Error(t, cfg.Validate(), "access validity must be shorter than refresh validity")
}

func TestParseEnv(t *testing.T) {
	t.Setenv("AUTHGUARD_ADDRESS", ":9090")
	t.Setenv("AUTHGUARD_SECRET_KEY", "env-signing-key")
	t.Setenv("AUTHGUARD_ACCESS_TOKEN_VALIDITY", "2m")
	t.Setenv("AUTHGUARD_SMTP_PORT", "2525")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "env-signing-key", cfg.SecretKey)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 2525, cfg.SMTPPort)

	// untouched values keep their defaults
	assert.Equal(t, 25*time.Minute, cfg.RefreshTokenValidityDuration)
}
