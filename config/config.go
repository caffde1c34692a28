package config

import (
	"os"
	"path/filepath"

	"task-admin-client/logging"

	"github.com/joho/godotenv"
)

// Config drži adrese servera i putanju do lokalne sesije.
type Config struct {
	APIBaseURL  string
	WSURL       string
	SessionFile string
}

func Load() Config {
	// .env je opcioni, environment ima prednost
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Debugf("Event ID: ENV_FILE_SKIPPED, Description: No .env file loaded: %v", err)
	}

	return Config{
		APIBaseURL:  getEnv("API_URL", "http://localhost:8000/api"),
		WSURL:       getEnv("WS_URL", "ws://localhost:8000/ws/tasks/"),
		SessionFile: getEnv("SESSION_FILE", defaultSessionFile()),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".task-admin", "session.json")
	}
	return filepath.Join(home, ".task-admin", "session.json")
}
