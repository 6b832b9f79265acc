package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	// DefaultSessionSecret is only acceptable outside production.
	DefaultSessionSecret = "teampulse-session-secret-change-me"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		Env            string   `yaml:"env"`
		Version        string   `yaml:"version"`
		StaticDir      string   `yaml:"staticDir"`
		BodyLimitMB    int      `yaml:"bodyLimitMB"`
		UploadLimitMB  int      `yaml:"uploadLimitMB"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Auth struct {
		Username      string        `yaml:"username"`
		Password      string        `yaml:"password"`
		SessionSecret string        `yaml:"sessionSecret"`
		SessionTTL    time.Duration `yaml:"sessionTTL"`
		CookieName    string        `yaml:"cookieName"`
		SecureCookie  bool          `yaml:"secureCookie"`
	} `yaml:"auth"`

	AI struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"apiKey"`
		Model       string        `yaml:"model"`
		StreamModel string        `yaml:"streamModel"`
		BaseURL     string        `yaml:"baseURL"`
		Temperature float64       `yaml:"temperature"`
		MaxTokens   int           `yaml:"maxTokens"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Limits struct {
		GlobalRequests         int           `yaml:"globalRequests"`
		GlobalWindow           time.Duration `yaml:"globalWindow"`
		APIRequests            int           `yaml:"apiRequests"`
		APIWindow              time.Duration `yaml:"apiWindow"`
		QuotaEnabled           bool          `yaml:"quotaEnabled"`
		NegotiationDailyTokens int64         `yaml:"negotiationDailyTokens"`
		SalaryDailyTokens      int64         `yaml:"salaryDailyTokens"`
		NegotiationWindowHours int           `yaml:"negotiationWindowHours"`
		SalaryWindowHours      int           `yaml:"salaryWindowHours"`
	} `yaml:"limits"`

	Storage struct {
		Driver   string `yaml:"driver"` // memory | mysql | postgres
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"storage"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Log struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"log"`
}

// Default returns a config usable without any file or environment.
func Default() *Config {
	var c Config
	c.Server.Port = 3000
	c.Server.Env = EnvDevelopment
	c.Server.Version = "1.1.0"
	c.Server.BodyLimitMB = 10
	c.Server.UploadLimitMB = 25

	c.Auth.Username = "admin"
	c.Auth.Password = "teampulse"
	c.Auth.SessionSecret = DefaultSessionSecret
	c.Auth.SessionTTL = 24 * time.Hour
	c.Auth.CookieName = "tp_session"

	c.AI.Provider = "openai"
	c.AI.Model = "gpt-4o"
	c.AI.StreamModel = "gpt-4o"
	c.AI.Temperature = 0.2
	c.AI.MaxTokens = 4096
	c.AI.Timeout = 120 * time.Second

	c.Limits.GlobalRequests = 100
	c.Limits.GlobalWindow = 15 * time.Minute
	c.Limits.APIRequests = 10
	c.Limits.APIWindow = time.Minute
	c.Limits.NegotiationDailyTokens = 13_500_000
	c.Limits.SalaryDailyTokens = 400_000
	c.Limits.NegotiationWindowHours = 12
	c.Limits.SalaryWindowHours = 24

	c.Storage.Driver = "memory"
	c.Redis.Addr = "localhost:6379"
	c.Minio.BucketName = "teampulse"

	c.Log.Level = "info"
	c.Log.Dir = "logs"
	return &c
}

// Load reads the yaml file on top of Default and then applies env overrides.
// A missing file is not an error: everything can come from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Server.Env == EnvProduction }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

// HasAICredential reports whether a real provider can be called.
func (c *Config) HasAICredential() bool { return c.AI.APIKey != "" }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.Name,
	)
}

func (c *Config) PostgresDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Storage.User,
		c.Storage.Password,
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.Name,
	)
}
