package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Validation collects boot-time problems. Errors stop the process,
// warnings are only logged.
type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

func (v Validation) OK() bool { return len(v.Errors) == 0 }

var (
	validEnvs      = map[string]bool{EnvDevelopment: true, EnvProduction: true, EnvTest: true}
	validLogLevels = map[string]bool{"error": true, "warn": true, "info": true, "debug": true, "verbose": true}
	validProviders = map[string]bool{"openai": true, "anthropic": true}
	validDrivers   = map[string]bool{"memory": true, "mysql": true, "postgres": true}

	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*(:\d+)?$`)
)

// Validate checks formats and ranges of the loaded config.
func (c *Config) Validate() Validation {
	var v Validation

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		v.addErr("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !validEnvs[c.Server.Env] {
		v.addErr("NODE_ENV must be one of development, production, test, got %q", c.Server.Env)
	}
	if !validLogLevels[c.Log.Level] {
		v.addErr("LOG_LEVEL must be one of error, warn, info, debug, verbose, got %q", c.Log.Level)
	}
	if !validProviders[c.AI.Provider] {
		v.addErr("AI_PROVIDER must be openai or anthropic, got %q", c.AI.Provider)
	}
	if !validDrivers[c.Storage.Driver] {
		v.addErr("storage driver must be memory, mysql or postgres, got %q", c.Storage.Driver)
	}
	if c.Server.BodyLimitMB <= 0 || c.Server.UploadLimitMB <= 0 {
		v.addErr("body and upload limits must be positive")
	}

	for _, o := range c.Server.AllowedOrigins {
		if !validOrigin(o) {
			v.addErr("ALLOWED_ORIGINS contains invalid origin %q", o)
		}
	}

	switch {
	case c.AI.APIKey == "":
		v.addWarn("no AI credential configured, running in demo mode")
	case c.AI.Provider == "openai" && (!strings.HasPrefix(c.AI.APIKey, "sk-") || len(c.AI.APIKey) < 20):
		v.addErr("OPENAI_API_KEY must start with sk- and be at least 20 characters")
	}

	if c.Auth.SessionSecret == "" {
		v.addErr("SESSION_SECRET must not be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		v.addErr("session TTL must be positive")
	}

	if c.Limits.QuotaEnabled && (c.Limits.NegotiationDailyTokens <= 0 || c.Limits.SalaryDailyTokens <= 0) {
		v.addErr("daily token limits must be positive when quota is enabled")
	}
	if c.Limits.NegotiationWindowHours <= 0 || c.Limits.SalaryWindowHours <= 0 {
		v.addErr("quota windows must be positive")
	}

	if c.IsProduction() {
		if c.Auth.SessionSecret == DefaultSessionSecret {
			v.addWarn("SESSION_SECRET uses the default value in production")
		}
		if len(c.Server.AllowedOrigins) == 0 {
			v.addWarn("ALLOWED_ORIGINS is not set in production, cross-origin requests will be refused")
		}
		if !c.Auth.SecureCookie {
			v.addWarn("session cookie is not marked Secure in production")
		}
	}
	return v
}

func validOrigin(o string) bool {
	if o == "*" {
		return true
	}
	if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
		u, err := url.Parse(o)
		return err == nil && u.Host != ""
	}
	return domainPattern.MatchString(o)
}
