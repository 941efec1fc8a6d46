package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Database struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

type Razorpay struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Receipt   string
}

type Twilio struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
	BaseURL     string
}

type SMS struct {
	ContactsFile  string
	Concurrency   int
	RatePerSecond float64
	SendTimeout   time.Duration
}

type Settings struct {
	Port           string
	NATSURL        string
	JWTSecret      string
	GatewayTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigins    []string
	Database       Database
	Razorpay       Razorpay
	Twilio         Twilio
	SMS            SMS
}

// LoadDotEnv loads .env into the process environment if one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}
}

func LoadDatabase() (Database, error) {
	db := Database{
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Host:     getEnv("DB_HOST", "127.0.0.1"),
		Port:     getEnv("DB_PORT", "3306"),
		Name:     os.Getenv("DB_NAME"),
	}
	var missing []string
	if db.User == "" {
		missing = append(missing, "DB_USER")
	}
	if db.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return db, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return db, nil
}

// Load reads every setting the donation API needs. All missing required
// variables are reported together so a bad deploy fails once, at startup.
func Load() (*Settings, error) {
	s := &Settings{
		Port:           getEnv("PORT", "5000"),
		NATSURL:        os.Getenv("NATS_URL"),
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		GatewayTimeout: getDuration("GATEWAY_TIMEOUT", 10*time.Second),
		RateLimitRPS:   getInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10),
		CORSOrigins:    getList("CORS_ORIGINS", []string{"*"}),
		Razorpay: Razorpay{
			KeyID:     os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
			Currency:  getEnv("PAYMENT_CURRENCY", "INR"),
			Receipt:   getEnv("PAYMENT_RECEIPT", "receipt_order_74394"),
		},
		Twilio: Twilio{
			AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			PhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
			BaseURL:     getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		},
		SMS: SMS{
			ContactsFile:  getEnv("SMS_CONTACTS_FILE", "data/alumni.xlsx"),
			Concurrency:   getInt("SMS_CONCURRENCY", 8),
			RatePerSecond: getFloat("SMS_RATE_PER_SECOND", 10),
			SendTimeout:   getDuration("SMS_SEND_TIMEOUT", 10*time.Second),
		},
	}

	required := map[string]string{
		"RAZORPAY_KEY_ID":     s.Razorpay.KeyID,
		"RAZORPAY_KEY_SECRET": s.Razorpay.KeySecret,
		"TWILIO_ACCOUNT_SID":  s.Twilio.AccountSID,
		"TWILIO_AUTH_TOKEN":   s.Twilio.AuthToken,
		"TWILIO_PHONE_NUMBER": s.Twilio.PhoneNumber,
		"AUTH_JWT_SECRET":     s.JWTSecret,
		"NATS_URL":            s.NATSURL,
	}
	var missing []string
	for _, key := range sortedKeys(required) {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}

	db, err := LoadDatabase()
	s.Database = db
	if err != nil {
		missing = append(missing, "DB_USER/DB_NAME")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if !strings.HasPrefix(s.Twilio.PhoneNumber, "+") {
		return nil, fmt.Errorf("TWILIO_PHONE_NUMBER must be in E.164 format, got %q", s.Twilio.PhoneNumber)
	}
	if s.SMS.Concurrency < 1 {
		s.SMS.Concurrency = 1
	}

	return s, nil
}

func (s *Settings) Addr() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
