package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const LOCAL_DB_PATH string = "./database/booking.json"

const (
	StoreLocal    = "local"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type Config struct {
	// booking API
	Port         string
	AllowOrigins string
	LogLevel     string

	StoreDriver   string
	LocalDBPath   string
	MongoDatabase string
	PostgresDSN   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	ConferenceName    string
	ConferenceTickets uint

	AdminLogin    string
	AdminPassword string

	// booking page
	WebPort    string
	APIBaseURL string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreLocal)),
		LocalDBPath:   getEnv("LOCAL_DB_PATH", LOCAL_DB_PATH),
		MongoDatabase: getEnv("MONGODB_DATABASE", "booking-service"),
		PostgresDSN: getEnv("POSTGRES_DSN",
			"host=127.0.0.1 user=postgres password=postgres dbname=booking_db port=5432 sslmode=disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      getDurationEnv("CACHE_TTL", 30*time.Second),

		ConferenceName:    getEnv("CONFERENCE_NAME", "Go Conference"),
		ConferenceTickets: uint(getIntEnv("CONFERENCE_TICKETS", 50)),

		AdminLogin:    getEnv("ADMIN_LOGIN", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		WebPort:    getEnv("WEB_PORT", "3000"),
		APIBaseURL: strings.TrimRight(getEnv("BOOKING_API_URL", "http://localhost:8080/api"), "/"),
	}
}

func GetSecret(key string) (string, error) {
	val, exist := os.LookupEnv(key)
	if exist {
		return val, nil
	}
	return "", fmt.Errorf("no env variable with key %v", key)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}
