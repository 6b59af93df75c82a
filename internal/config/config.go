package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PostgresURI    string
	RedisURI       string
	Port           string
	Environment    string // ENV: production, development, etc.
	AllowedOrigins []string
	AllowedHost    string // production host check; empty disables

	JWTSecret string
	JWTTTL    time.Duration // session token lifetime, default 7 days

	MailtrapAPIURL    string
	MailtrapAPIKey    string
	MailtrapFromEmail string
	MailtrapFromName  string
	// Template ids for the three OTP mails.
	SignupOTPTemplate string
	LoginOTPTemplate  string
	ResetOTPTemplate  string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	ttl := 7 * 24 * time.Hour
	if s := os.Getenv("JWT_TTL_HOURS"); s != "" {
		if h, err := strconv.Atoi(s); err == nil && h > 0 {
			ttl = time.Duration(h) * time.Hour
		}
	}

	return &Config{
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/seekers?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		AllowedOrigins: allowedOrigins,
		AllowedHost:    getEnv("ALLOWED_HOST", ""),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTTTL:    ttl,

		MailtrapAPIURL:    getEnv("MAILTRAP_API_URL", "https://send.api.mailtrap.io/api/send"),
		MailtrapAPIKey:    getEnv("MAILTRAP_API_KEY", ""),
		MailtrapFromEmail: getEnv("MAILTRAP_FROM_EMAIL", "noreply@seekers.example"),
		MailtrapFromName:  getEnv("MAILTRAP_FROM_NAME", "Seekers"),
		SignupOTPTemplate: getEnv("MAILTRAP_SIGNUP_OTP_TEMPLATE", "signup-otp"),
		LoginOTPTemplate:  getEnv("MAILTRAP_LOGIN_OTP_TEMPLATE", "login-otp"),
		ResetOTPTemplate:  getEnv("MAILTRAP_RESET_OTP_TEMPLATE", "reset-otp"),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
