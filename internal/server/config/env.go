package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win over
// it, as godotenv does not override existing ones.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("AUTHGUARD_ADDRESS", &config.EndpointAddrHTTP)
	setString("AUTHGUARD_DATABASE_DSN", &config.DatabaseDSN)
	setString("AUTHGUARD_SECRET_KEY", &config.SecretKey)
	setString("AUTHGUARD_TOTP_SECRET", &config.TOTPSecret)
	setDuration("AUTHGUARD_ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	setDuration("AUTHGUARD_REFRESH_TOKEN_VALIDITY", &config.RefreshTokenValidityDuration)
	setDuration("AUTHGUARD_OTP_VALIDITY", &config.OTPValidityDuration)
	setString("AUTHGUARD_SMTP_HOST", &config.SMTPHost)
	if v, ok := os.LookupEnv("AUTHGUARD_SMTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.SMTPPort = port
		}
	}
	setString("AUTHGUARD_SMTP_USERNAME", &config.SMTPUsername)
	setString("AUTHGUARD_SMTP_PASSWORD", &config.SMTPPassword)
	setString("AUTHGUARD_MAIL_FROM", &config.MailFrom)
}
