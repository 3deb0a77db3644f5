package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("ℹ️  No .env file found, continuing...")
	}
}

// DatabaseURL resolves the connection string: environment first, then the
// project config value.
func DatabaseURL(fromConfig string) (string, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	if fromConfig != "" {
		return fromConfig, nil
	}
	return "", fmt.Errorf("DATABASE_URL not set (schemato.yaml, .env or environment)")
}
