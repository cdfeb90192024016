// Package config loads process settings from the environment, after reading
// a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arnavshah/ttr-scheduler/pkg/scheduler"
)

// EnvPaths are tried in order; the first existing file is loaded
var EnvPaths = []string{".env", "../.env", "../../.env"}

// MaxDaysPerRequest caps days planned by one API call
const MaxDaysPerRequest = 31

// Settings is the process configuration. Engine holds the scheduling
// defaults; CLI flags and API requests may override them per run.
type Settings struct {
	Engine scheduler.Config

	Port            string
	DatabaseURL     string
	DataPath        string
	JWTSecret       string
	APIMasterSecret string
	AdminUsername   string
	AdminPassword   string
	LogLevel        string
	LogFormat       string
}

// LoadEnvFile loads the first .env file found in EnvPaths. Variables already
// set in the environment win.
func LoadEnvFile() {
	for _, p := range EnvPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads .env and the environment, applies defaults and validates the
// engine settings
func Load() (Settings, error) {
	LoadEnvFile()
	return FromEnv()
}

// FromEnv reads settings from the current environment only
func FromEnv() (Settings, error) {
	s := Settings{
		Engine:          scheduler.DefaultConfig(),
		Port:            getenv("PORT", "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getenv("DATA_PATH", "rota.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		AdminUsername:   getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getenv("ADMIN_PASSWORD", "admin123"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "text"),
	}

	var err error
	if s.Engine.TTRNight, err = intEnv("ROTA_TTR_NIGHT", s.Engine.TTRNight); err != nil {
		return s, err
	}
	if s.Engine.TTRDay, err = intEnv("ROTA_TTR_DAY", s.Engine.TTRDay); err != nil {
		return s, err
	}
	if s.Engine.ShuffleCoefficient, err = intEnv("ROTA_SHUFFLE", s.Engine.ShuffleCoefficient); err != nil {
		return s, err
	}
	if s.Engine.DaysToPlan, err = intEnv("ROTA_DAYS", s.Engine.DaysToPlan); err != nil {
		return s, err
	}
	if v := os.Getenv("ROTA_SEED"); v != "" {
		if s.Engine.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return s, envError("ROTA_SEED", v, err)
		}
	}
	if v := os.Getenv("ROTA_NIGHT_REST_HOURS"); v != "" {
		if s.Engine.NightRestHours, err = ParseHourList(v); err != nil {
			return s, envError("ROTA_NIGHT_REST_HOURS", v, err)
		}
	}
	if v := os.Getenv("ROTA_NIGHT_WATCH_HOURS"); v != "" {
		if s.Engine.NightWatchHours, err = ParseHourList(v); err != nil {
			return s, envError("ROTA_NIGHT_WATCH_HOURS", v, err)
		}
	}
	return s, s.Validate()
}

// Validate checks the engine defaults
func (s Settings) Validate() error {
	return s.Engine.Validate()
}

// ParseHourList reads a comma-separated list of hours of day
func ParseHourList(v string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback, envError(key, v, err)
	}
	return n, nil
}

func envError(key, value string, err error) error {
	return &scheduler.ConfigError{Context: "environment", Msg: fmt.Sprintf("%s=%q", key, value), Err: err}
}
