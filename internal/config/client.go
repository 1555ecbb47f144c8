package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ClientConfig configures floralctl.
type ClientConfig struct {
	Env        string        `yaml:"env" env:"ENV" env-default:"local"`
	ServerURL  string        `yaml:"server_url" env:"FLORAL_SERVER_URL" env-default:"http://localhost:3001"`
	LocalDB    string        `yaml:"local_db" env:"FLORAL_LOCAL_DB" env-default:"floral.db"`
	Timeout    time.Duration `yaml:"timeout" env-default:"15s"`
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"12h"`
}

// LoadClient reads path when given, env variables otherwise.
func LoadClient(path string) (*ClientConfig, error) {
	const op = "config.LoadClient"

	var cfg ClientConfig

	if path == "" {
		path = os.Getenv("FLORAL_CONFIG")
	}

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}
