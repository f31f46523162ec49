package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"apiKey"`

		RateLimit struct {
			Capacity     int `yaml:"capacity"`
			RefillPerSec int `yaml:"refillPerSec"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // sqlite | postgres | mysql
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
		Path     string `yaml:"path"` // sqlite file
	} `yaml:"database"`

	Classifier struct {
		Provider string `yaml:"provider"` // keyword | openai
		APIKey   string `yaml:"apiKey"`
		Model    string `yaml:"model"`
	} `yaml:"classifier"`

	Archive struct {
		Enabled   bool   `yaml:"enabled"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"accessKey"`
		SecretKey string `yaml:"secretKey"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		UseSSL    bool   `yaml:"useSSL"`
	} `yaml:"archive"`
}

// Load baca file config.yaml; a missing file falls back to defaults so the
// service can run locally on sqlite without any configuration.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 60
	}
	if c.Server.RateLimit.RefillPerSec == 0 {
		c.Server.RateLimit.RefillPerSec = 1
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/tickets.db"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Classifier.Provider == "" {
		c.Classifier.Provider = "keyword"
	}
	if c.Classifier.APIKey == "" {
		c.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}
