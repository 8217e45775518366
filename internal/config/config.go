package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

type Config struct {
	APIBaseURL string        `koanf:"api_base_url"`
	StateDir   string        `koanf:"state_dir"`
	Timeout    time.Duration `koanf:"timeout"`
	LogFile    string        `koanf:"log_file"`
	Debug      bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		StateDir: defaultStateDir(),
		Timeout:  20 * time.Second,
		LogFile:  "./koi-orders.log",
		Debug:    false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	if cfg.APIBaseURL == "" {
		return Config{}, errors.New("api_base_url is required (API_BASE_URL)")
	}

	return cfg, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".koi-orders"
	}
	return filepath.Join(home, ".koi-orders")
}
