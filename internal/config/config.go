// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAddr = ":8080"

type Config struct {
	APIKey   string
	VideoID  string
	DBPath   string
	Location *time.Location
	Addr     string
	LogPath  string
	Env      string
	Notify   bool

	// TrustProxy keys rate limiting on X-Forwarded-For.
	TrustProxy bool

	MetricsUser string
	MetricsPass string
}

// ChatEnabled reports whether enough is configured to read a live chat.
func (c Config) ChatEnabled() bool {
	return c.APIKey != "" && c.VideoID != ""
}

// Load reads files (default ".env") into the environment, then parses it.
// Missing files are skipped. Variables already set win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		APIKey:      strings.TrimSpace(getenv("YOUTUBE_API_KEY")),
		VideoID:     strings.TrimSpace(getenv("VIDEO_ID")),
		DBPath:      getenv("STUDYBOARD_DB"),
		Addr:        getenv("STUDYBOARD_ADDR"),
		LogPath:     getenv("STUDYBOARD_LOG"),
		Env:         getenv("APP_ENV"),
		MetricsUser: getenv("METRICS_USER"),
		MetricsPass: getenv("METRICS_PASS"),
		Location:    time.Local,
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	if tz := getenv("STUDYBOARD_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("parse STUDYBOARD_TZ: %w", err)
		}
		cfg.Location = loc
	}

	if v := getenv("NOTIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse NOTIFY: %w", err)
		}
		cfg.Notify = b
	}

	if v := getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse TRUST_PROXY: %w", err)
		}
		cfg.TrustProxy = b
	}
	return cfg, nil
}
