// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Portal
	PortalURL          string
	NavigationTimeout  time.Duration
	ElementTimeout     time.Duration
	ResultPollInterval time.Duration
	ResultPollAttempts int

	// Storage
	UploadsDir    string
	DataFile      string
	RosterFile    string
	AirlineDBPath string

	// Invoices
	HighValueThreshold float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "3001"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 120)) * time.Second,

		PortalURL:          getEnv("PORTAL_URL", "https://thaiair.thaiairways.com/ETAXPrint/pages/passengerPages/passengerHomePage.jsp"),
		NavigationTimeout:  time.Duration(getEnvAsInt("NAV_TIMEOUT", 30)) * time.Second,
		ElementTimeout:     time.Duration(getEnvAsInt("ELEMENT_TIMEOUT", 10)) * time.Second,
		ResultPollInterval: time.Duration(getEnvAsInt("RESULT_POLL_INTERVAL", 1)) * time.Second,
		ResultPollAttempts: getEnvAsInt("RESULT_POLL_ATTEMPTS", 15),

		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		DataFile:      getEnv("PASSENGER_DATA_FILE", "data/passengers.json"),
		RosterFile:    getEnv("ROSTER_CSV_FILE", "data/data.csv"),
		AirlineDBPath: getEnv("AIRLINE_DB_PATH", "data/airlines.db"),

		HighValueThreshold: getEnvAsFloat("HIGH_VALUE_THRESHOLD", 30000),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
