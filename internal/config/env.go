package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides file values with environment variables. Only set,
// non-empty variables take effect.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("APP_ENV"); ok {
		c.Server.Env = v
	} else if v, ok := lookup("NODE_ENV"); ok {
		c.Server.Env = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_DIR"); ok {
		c.Log.Dir = v
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("STATIC_DIR"); ok {
		c.Server.StaticDir = v
	}

	if v, ok := lookup("SESSION_SECRET"); ok {
		c.Auth.SessionSecret = v
	}
	if v, ok := lookup("DEMO_USERNAME"); ok {
		c.Auth.Username = v
	}
	if v, ok := lookup("DEMO_PASSWORD"); ok {
		c.Auth.Password = v
	}

	if v, ok := lookup("AI_PROVIDER"); ok {
		c.AI.Provider = strings.ToLower(v)
	}
	switch c.AI.Provider {
	case "anthropic":
		if v, ok := lookup("ANTHROPIC_API_KEY"); ok {
			c.AI.APIKey = v
		}
	default:
		if v, ok := lookup("OPENAI_API_KEY"); ok {
			c.AI.APIKey = v
		}
	}
	if v, ok := lookup("AI_MODEL"); ok {
		c.AI.Model = v
	}
	if v, ok := lookup("AI_STREAM_MODEL"); ok {
		c.AI.StreamModel = v
	}
	if v, ok := lookup("AI_BASE_URL"); ok {
		c.AI.BaseURL = v
	}

	if v, ok := lookup("DAILY_TOKENS_LIMIT"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("DAILY_TOKENS_LIMIT: %w", err)
		}
		c.Limits.NegotiationDailyTokens = n
	}
	if v, ok := lookup("SALARY_DAILY_TOKENS_LIMIT"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SALARY_DAILY_TOKENS_LIMIT: %w", err)
		}
		c.Limits.SalaryDailyTokens = n
	}
	if v, ok := lookup("NEGOTIATION_TIMEOUT_HOURS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NEGOTIATION_TIMEOUT_HOURS: %w", err)
		}
		c.Limits.NegotiationWindowHours = n
	}
	if v, ok := lookup("SALARY_TIMEOUT_HOURS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SALARY_TIMEOUT_HOURS: %w", err)
		}
		c.Limits.SalaryWindowHours = n
	}
	if v, ok := lookup("QUOTA_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUOTA_ENABLED: %w", err)
		}
		c.Limits.QuotaEnabled = b
	}

	if v, ok := lookup("DATABASE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("DATABASE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}

	if v, ok := lookup("MINIO_ENDPOINT"); ok {
		c.Minio.Endpoint = v
		c.Minio.Enabled = true
	}
	if v, ok := lookup("MINIO_ACCESS_KEY"); ok {
		c.Minio.AccessKey = v
	}
	if v, ok := lookup("MINIO_SECRET_KEY"); ok {
		c.Minio.SecretKey = v
	}
	if v, ok := lookup("MINIO_BUCKET"); ok {
		c.Minio.BucketName = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
