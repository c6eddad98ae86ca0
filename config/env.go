package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env files into the process environment. Missing files are
// ignored; variables already set win.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env loaded", "error", err)
		return
	}
	slog.Debug("environment variables loaded from .env")
}
