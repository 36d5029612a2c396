/*
Package config
File: config.go
Description:
    Process configuration. Values come from the environment, optionally seeded
    from a .env file in the working directory. Game tuning lives in tuning.yaml
    (see internal/tuning), not here.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every process-level setting.
type Config struct {
	Addr          string  `env:"PLASMA_ADDR" envDefault:":8081"`                 // HTTP listen address
	TuningPath    string  `env:"PLASMA_TUNING_PATH" envDefault:"tuning.yaml"`    // Game tuning file
	DBPath        string  `env:"PLASMA_DB_PATH" envDefault:"data/plasma.db"`     // SQLite prefs + pilots
	RecorderDir   string  `env:"PLASMA_RECORDER_DIR" envDefault:"data/recorder"` // Flight recorder output, empty disables
	AllowedOrigin string  `env:"PLASMA_ALLOWED_ORIGIN" envDefault:"*"`           // CORS + WebSocket origin
	InputRate     float64 `env:"PLASMA_INPUT_RATE" envDefault:"60"`              // WebSocket input frames per second per client
	InputBurst    int     `env:"PLASMA_INPUT_BURST" envDefault:"20"`             // Burst allowance for the limiter
}

// Load reads .env (if present) and then parses the environment.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files. Missing files are skipped;
// variables already set in the environment win.
func LoadFiles(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		log.Printf("CONFIG: loaded environment from %s", f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("PLASMA_ADDR is empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("PLASMA_DB_PATH is empty")
	}
	if c.InputRate <= 0 {
		return fmt.Errorf("PLASMA_INPUT_RATE must be > 0, got %v", c.InputRate)
	}
	if c.InputBurst <= 0 {
		return fmt.Errorf("PLASMA_INPUT_BURST must be > 0, got %d", c.InputBurst)
	}
	return nil
}
