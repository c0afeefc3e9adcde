package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type config struct {
	Port          string `yaml:"port"`
	StaticDir     string `yaml:"static_dir"`
	LogMode       string `yaml:"log_mode"`
	ExportName    string `yaml:"export_name"`
	CategoryDedup bool   `yaml:"category_dedup"`
}

func defaultConfig() config {
	return config{
		Port:       "8990",
		StaticDir:  "static",
		LogMode:    "dev",
		ExportName: "ExportedQuestions.xml",
	}
}

// loadConfig layers defaults, an optional YAML file and the environment
// (including .env), in that order.
func loadConfig(path string) (config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv("QUIZ_CONFIG")
	}
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.StaticDir = envOrDefault("STATIC_DIR", cfg.StaticDir)
	cfg.LogMode = envOrDefault("LOG_MODE", cfg.LogMode)
	cfg.ExportName = envOrDefault("EXPORT_NAME", cfg.ExportName)
	if v := os.Getenv("CATEGORY_DEDUP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("parse CATEGORY_DEDUP: %w", err)
		}
		cfg.CategoryDedup = b
	}

	return cfg, nil
}

func loadConfigFile(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
