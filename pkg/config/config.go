package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type CRMConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	Timeout    time.Duration
}

// Configured reports whether both halves of the credential pair are present.
func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

type TelephonyConfig struct {
	// Provider is the name of the active telephony provider: "twilio" or "sandbox".
	Provider string
}

type LogConfig struct {
	Level string
	File  string
}

type SecurityConfig struct {
	// APIKey protects the /api group with a static key when set.
	APIKey string
}

type Config struct {
	Server    ServerConfig
	CRM       CRMConfig
	Twilio    TwilioConfig
	Telephony TelephonyConfig
	Log       LogConfig
	Security  SecurityConfig
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", getEnv("PORT", "3000")),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		},
		CRM: CRMConfig{
			BaseURL: strings.TrimRight(getEnv("ESPOCRM_URL", ""), "/"),
			APIKey:  getEnv("ESPOCRM_API_KEY", ""),
			Timeout: getDuration("CRM_TIMEOUT", 30*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			BaseURL:    strings.TrimRight(getEnv("TWILIO_BASE_URL", "https://api.twilio.com"), "/"),
			Timeout:    getDuration("TWILIO_TIMEOUT", 30*time.Second),
		},
		Telephony: TelephonyConfig{
			Provider: strings.ToLower(getEnv("TELEPHONY_PROVIDER", "twilio")),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Security: SecurityConfig{
			APIKey: getEnv("API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid duration %q for %s, using %s", value, key, fallback)
		return fallback
	}
	return d
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
