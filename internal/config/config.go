package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	SessionTTL     time.Duration
	OTPTTL         time.Duration
	ResetTokenTTL  time.Duration
	GoogleClientID string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	MailFrom       string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "giftshop"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		SessionTTL:     getDurationEnv("SESSION_TOKEN_TTL", 7, 24*time.Hour),
		OTPTTL:         getDurationEnv("OTP_TTL", 60, time.Minute),
		ResetTokenTTL:  getDurationEnv("RESET_TOKEN_TTL", 60, time.Minute),
		GoogleClientID: getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
		SMTPHost:       getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:       getIntEnv("SMTP_PORT", 587),
		SMTPUser:       getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:       getEnvOrDefault("SMTP_PASS", ""),
		MailFrom:       getEnvOrDefault("MAIL_FROM", "no-reply@giftshop.local"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
