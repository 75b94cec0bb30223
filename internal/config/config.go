package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config описывает основные параметры пайплайна.
type Config struct {
	Pipeline struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"pipeline"`
	SQLite struct {
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"sqlite"`
	Scheduler struct {
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"scheduler"`
	Watch struct {
		Dir      string   `yaml:"dir"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"watch"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	var cfg Config
	cfg.Pipeline.LogLevel = "info"
	cfg.SQLite.Path = ""
	cfg.SQLite.RetentionDays = 30
	cfg.Scheduler.IntervalSeconds = 300
	cfg.Watch.Patterns = []string{"*.fasta", "*.fa", "*.fna"}
	return cfg
}

// Load читает конфиг из файла YAML, поверх значений по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- путь к конфигу задается доверенным оператором.
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("config file is empty")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
