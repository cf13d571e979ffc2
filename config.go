package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// config is the process configuration, read once at startup. The signing
// secret lives here and is injected into the token service; nothing reads
// it from the environment afterwards.
type config struct {
	Port         string
	DBPath       string
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	ClientOrigin string
	UploadDir    string
}

// loadConfig reads .env (if present) and the environment.
func loadConfig() config {
	_ = godotenv.Load()
	return config{
		Port:         getEnv("PORT", "4444"),
		DBPath:       getEnv("DB_PATH", "./data/blog.db"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		TokenTTL:     time.Duration(envInt("JWT_EXPIRES_DAYS", 30)) * 24 * time.Hour,
		BcryptCost:   envInt("BCRYPT_COST", bcrypt.DefaultCost),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:3000"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses an integer env var, falling back to def.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
