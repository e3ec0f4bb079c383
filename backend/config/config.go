package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	DBPath         string
	CacheDir       string
	JWTSecret      string
	LogMode        string
	DriveAPIBase   string
	RemoteStoreURL string
	RemoteStoreKey string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "drivestudy.db"),
		CacheDir:       getEnv("CACHE_DIR", ".cache/assets"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		LogMode:        getEnv("LOG_MODE", "dev"),
		DriveAPIBase:   getEnv("DRIVE_API_BASE", "https://www.googleapis.com/drive/v3"),
		RemoteStoreURL: getEnv("REMOTE_STORE_URL", ""),
		RemoteStoreKey: getEnv("REMOTE_STORE_KEY", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
