package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                 int
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIModel          string
	GenerateAttempts     int
	ScanPassCap          int
	RegenDelayMillis     int
	GenerateAllCap       int
	PoolSize             int
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeSec int
}

func Default() Config {
	return Config{
		Port:                 3000,
		OpenAIBaseURL:        "https://api.openai.com/v1",
		OpenAIModel:          "gpt-4o-mini",
		GenerateAttempts:     5,
		ScanPassCap:          10,
		RegenDelayMillis:     500,
		GenerateAllCap:       30,
		PoolSize:             10,
		DBMaxOpenConns:       10,
		DBMaxIdleConns:       10,
		DBConnMaxLifetimeSec: 300,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Port = value
		}
	}
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPEN_API_BASE_URL"); raw != "" {
		cfg.OpenAIBaseURL = raw
	}
	if raw := os.Getenv("OPENAI_MODEL"); raw != "" {
		cfg.OpenAIModel = raw
	}
	if raw := os.Getenv("GENERATE_ATTEMPTS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GenerateAttempts = value
		}
	}
	if raw := os.Getenv("SCAN_PASS_CAP"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ScanPassCap = value
		}
	}
	if raw := os.Getenv("REGEN_DELAY_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RegenDelayMillis = value
		}
	}
	if raw := os.Getenv("GENERATE_ALL_CAP"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.GenerateAllCap = value
		}
	}
	if raw := os.Getenv("POOL_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PoolSize = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSec = value
		}
	}
	return cfg
}
