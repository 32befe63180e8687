package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBDriver  string
	DBName    string
	JWTKey    string
	SaltRound int

	MoodleBaseURL        string
	MoodleToken          string
	MoodleTimeoutSeconds int

	SyncStudentDelayMs int
	SyncBatchSize      int
	SyncCron           string

	ReportEmail    string
	SendgridAPIKey string
	EmailSender    string
	Password       string // SMTP Password
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBDriver:  getEnv("DB_DRIVER", "postgres"),
		DBName:    getEnv("DB_NAME", "lmsync.db"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		MoodleBaseURL:        getEnv("MOODLE_BASE_URL", "http://localhost:8080"),
		MoodleToken:          getEnv("MOODLE_TOKEN", ""),
		MoodleTimeoutSeconds: getEnvInt("MOODLE_TIMEOUT_SECONDS", 30),

		SyncStudentDelayMs: getEnvInt("SYNC_STUDENT_DELAY_MS", 500),
		SyncBatchSize:      getEnvInt("SYNC_BATCH_SIZE", 100),
		SyncCron:           getEnv("SYNC_CRON", "0 2 * * *"),

		ReportEmail:    getEnv("REPORT_EMAIL", ""),
		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:       getEnv("PASSWORD", "defaultSecret"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MoodleToken == "" {
		log.Println("Warning: MOODLE_TOKEN is empty. Sync calls will be rejected by the LMS.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
