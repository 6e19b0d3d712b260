package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBPath        string
	CursorTTL     time.Duration
	SweepInterval time.Duration
	RoomTTL       time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		DBPath:        getEnvOrDefault("WHITEBOARD_DB_PATH", "./data/whiteboard.db"),
		CursorTTL:     getDurationOrDefault("CURSOR_TTL", "5s"),
		SweepInterval: getDurationOrDefault("SWEEP_INTERVAL", "1h"),
		RoomTTL:       getDurationOrDefault("ROOM_TTL", "24h"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}
