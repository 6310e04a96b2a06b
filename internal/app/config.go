package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL       string `yaml:"base_url"`
	Debug         bool   `yaml:"debug"`
	StorageDriver string `yaml:"storage_driver"` // memory | file | redis
	StorageRoot   string `yaml:"storage_root"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8080/api",
		StorageDriver: "file",
	}
}

func DefaultConfigPath() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "aichat", "config.yaml")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".config", "aichat", "config.yaml")
	}
	return filepath.Join(os.TempDir(), "aichat", "config.yaml")
}

// LoadConfig reads the config file, then applies environment overrides.
// A .env in the working directory is loaded first so local setups can
// override the base URL without touching the config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("AICHAT_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AICHAT_STORAGE_DRIVER")); v != "" {
		cfg.StorageDriver = v
	}
	if v := strings.TrimSpace(os.Getenv("AICHAT_STORAGE_ROOT")); v != "" {
		cfg.StorageRoot = v
	}
	if v := strings.TrimSpace(os.Getenv("AICHAT_REDIS_ADDR")); v != "" {
		cfg.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("AICHAT_DEBUG")); v == "1" || strings.EqualFold(v, "true") {
		cfg.Debug = true
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	switch cfg.StorageDriver {
	case "memory", "file", "redis":
	case "":
		cfg.StorageDriver = "file"
	default:
		return cfg, errors.New("unknown storage_driver: " + cfg.StorageDriver)
	}

	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
