package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultAddr        = ":8080"
	defaultSnapshotDir = "public/snapshots"
	defaultDBPath      = "exam.db"
	defaultLogMode     = "development"
)

type Config struct {
	Addr        string
	SnapshotDir string
	DBPath      string
	AdminToken  string
	LogMode     string
}

// Load reads .env when present and falls back to the process environment.
// The returned bool reports whether a .env file was loaded.
func Load(files ...string) (Config, bool) {
	loaded := godotenv.Load(files...) == nil

	return Config{
		Addr:        getEnv("ADDR", defaultAddr),
		SnapshotDir: getEnv("SNAPSHOT_DIR", defaultSnapshotDir),
		DBPath:      getEnv("DB_PATH", defaultDBPath),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),
		LogMode:     getEnv("LOG_MODE", defaultLogMode),
	}, loaded
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
