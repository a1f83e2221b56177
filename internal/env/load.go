package env

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// LoadEnv copies .env files (default ".env") into the process environment.
// Variables already set win. A missing file only logs.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Info("No .env file found, assuming environment variables are set directly.", "err", err)
	}
}
