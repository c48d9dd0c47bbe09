package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds everything the portal reads from the environment.
// A .env file in the working directory is loaded automatically.
type Config struct {
	Port int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	CookieSecure       bool

	SSO SSOConfig

	CORSOrigins []string

	LogFile  string
	LogLevel string
}

type SSOConfig struct {
	Provider      string // google | azure
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	Tenant        string
	UserInfoURL   string
	AllowedDomain string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port: envInt("PORT", 8080),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USERNAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_DATABASE"),
		DBSSLMode:  envString("DB_SSLMODE", "disable"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		AccessTokenSecret:  []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret: []byte(os.Getenv("REFRESH_TOKEN_SECRET")),
		CookieSecure:       envBool("COOKIE_SECURE", true),

		SSO: SSOConfig{
			Provider:      strings.ToLower(envString("SSO_PROVIDER", "azure")),
			ClientID:      os.Getenv("SSO_CLIENT_ID"),
			ClientSecret:  os.Getenv("SSO_CLIENT_SECRET"),
			RedirectURL:   os.Getenv("SSO_REDIRECT_URL"),
			Tenant:        envString("SSO_TENANT", "common"),
			UserInfoURL:   os.Getenv("SSO_USERINFO_URL"),
			AllowedDomain: strings.ToLower(strings.TrimSpace(os.Getenv("SSO_ALLOWED_DOMAIN"))),
		},

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),

		LogFile:  os.Getenv("LOG_FILE"),
		LogLevel: envString("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// ValidateDatabase reports missing connection settings. The migrate and
// superuser commands only need the database half of the config.
func (c *Config) ValidateDatabase() error {
	required := map[string]string{
		"DB_HOST":     c.DBHost,
		"DB_USERNAME": c.DBUser,
		"DB_PASSWORD": c.DBPassword,
		"DB_DATABASE": c.DBName,
	}
	for _, name := range []string{"DB_HOST", "DB_USERNAME", "DB_PASSWORD", "DB_DATABASE"} {
		if required[name] == "" {
			return fmt.Errorf("%s environment variable is required", name)
		}
	}
	return nil
}

// Validate checks everything `serve` needs.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if len(c.AccessTokenSecret) == 0 || len(c.RefreshTokenSecret) == 0 {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.SSO.ClientID == "" || c.SSO.ClientSecret == "" || c.SSO.RedirectURL == "" {
		return fmt.Errorf("SSO_CLIENT_ID, SSO_CLIENT_SECRET and SSO_REDIRECT_URL are required")
	}
	switch c.SSO.Provider {
	case "google", "azure":
	default:
		return fmt.Errorf("unsupported SSO_PROVIDER %q: must be google or azure", c.SSO.Provider)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
