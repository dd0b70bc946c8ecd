package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env        string
	Port       string
	CORSOrigin string
	AppURL     string

	// Database
	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string

	// Session
	JWTSecret        string
	JWTExpirationDur time.Duration
	CookieSecure     bool

	// Mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	FromName     string
	FromEmail    string
	ContactEmail string

	// Campaigns
	CampaignConcurrency int

	// Files
	UploadDir      string
	MaxUploadBytes int64

	// Operations
	MetricsAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		AppURL:     getEnv("APP_URL", "http://localhost:3000"),

		// Database
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "bandhub"),
		DBPassword:  getEnv("DB_PASSWORD", "bandhub"),
		DBName:      getEnv("DB_NAME", "bandhub"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "bandhub.db"),

		// Session
		JWTSecret:    getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),

		// Mail
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		FromName:     getEnv("FROM_NAME", "Band Site"),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@localhost"),
		ContactEmail: getEnv("CONTACT_EMAIL", ""),

		CampaignConcurrency: getEnvInt("CAMPAIGN_CONCURRENCY", 5),

		// Files
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,

		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),
	}

	// Parse session lifetime
	expStr := getEnv("JWT_EXPIRES_IN", "720h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 720h\n", expStr)
		expDur = 720 * time.Hour
	}
	config.JWTExpirationDur = expDur

	if config.CampaignConcurrency < 1 {
		config.CampaignConcurrency = 1
	}

	return config, nil
}

// MailConfigured reports whether outbound SMTP delivery is available.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
