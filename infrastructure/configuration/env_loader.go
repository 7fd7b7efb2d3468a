package configuration

import (
	"os"

	"ai-promoter/infrastructure/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile loads KEY=VALUE pairs from one or more files (e.g., config.env, .env).
// Missing files are skipped and existing env vars are not overridden.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.GetLogger().WithField("path", p).WithError(err).Warn("Failed to load env file")
		}
	}
}
