package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file
// in the working directory is loaded first if present; real environment
// variables win over .env values, which godotenv guarantees by never
// overriding existing keys.
//
// Duration variables are integers in minutes.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "JWT_SECRET")
	setDurationMinutes(&config.SessionTokenValidity, "SESSION_TOKEN_TTL_MIN")
	setDurationMinutes(&config.ResetTokenValidity, "RESET_TOKEN_TTL_MIN")
	setDurationMinutes(&config.VerificationCodeTTL, "VERIFICATION_CODE_TTL_MIN")
	setInt(&config.BcryptCost, "BCRYPT_COST")
	setString(&config.SMTPHost, "SMTP_HOST")
	setString(&config.SMTPPort, "SMTP_PORT")
	setString(&config.SMTPUsername, "SMTP_USERNAME")
	setString(&config.SMTPPassword, "SMTP_PASSWORD")
	setString(&config.EmailFrom, "EMAIL_FROM")
	setString(&config.StaticDir, "STATIC_DIR")
	setString(&config.PublicBaseURL, "PUBLIC_BASE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDurationMinutes(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Minute
		}
	}
}
