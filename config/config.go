// Package config loads server settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env         string `yaml:"env"`
	Port        int    `yaml:"port"`
	SecretKey   string `yaml:"secret_key"`
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
}

func Default() Config {
	return Config{
		Env:         "development",
		Port:        3001,
		SecretKey:   "secret-dev",
		Driver:      "postgres",
		DatabaseURL: "postgresql:///jobly?sslmode=disable",
		BcryptCost:  12,
	}
}

// Load reads path (when not empty) over the defaults and then applies
// environment overrides.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("JOBLY_ENV"); ok {
		c.Env = v
	}
	if v, ok := lookup("JOBLY_SECRET_KEY"); ok {
		c.SecretKey = v
	}
	if v, ok := lookup("JOBLY_DRIVER"); ok {
		c.Driver = v
	}
	if v, ok := lookup("JOBLY_DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be a number: %w", err)
		}
		c.Port = port
	}
	if c.Env == "test" {
		c.BcryptCost = 4
	}
	return nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
