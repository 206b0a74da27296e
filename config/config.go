// ABOUTME: Application configuration from file, .env, and environment
// ABOUTME: Layers defaults, XDG config JSON, and COMMTRACK_* variables

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/harperreed/commtrack/session"
	"github.com/joho/godotenv"
)

const (
	// AppName is the directory name under the XDG config and data homes.
	AppName = "commtrack"

	// ConfigFileName is where we store local config.
	ConfigFileName = "config.json"

	// DefaultJWTSecret signs demo tokens when nothing else is configured.
	DefaultJWTSecret = "commtrack-demo-secret"

	envPrefix = "COMMTRACK_"
)

// Config holds the settings shared by every surface.
type Config struct {
	// Port is the HTTP listen port for serve.
	Port int `json:"port"`

	JWTSecret string        `json:"jwt_secret,omitempty"`
	TokenTTL  time.Duration `json:"token_ttl,omitempty"`

	// SessionDir holds the persisted current-user slot.
	SessionDir string `json:"session_dir,omitempty"`

	// SeedFile replaces the embedded demo data when set.
	SeedFile string `json:"seed_file,omitempty"`

	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	LogLevel       string   `json:"log_level,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		JWTSecret:      DefaultJWTSecret,
		TokenTTL:       12 * time.Hour,
		SessionDir:     session.DefaultDir(),
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
	}
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// LoadConfig reads the config file at Path, then .env, then the environment.
// The default file is optional.
func LoadConfig() (*Config, error) {
	return load(Path(), true)
}

// LoadConfigFrom is LoadConfig with an explicit file path, which must exist.
func LoadConfigFrom(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, optional bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && optional:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := getEnv("PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPORT: %w", envPrefix, err)
		}
		c.Port = port
	}
	if v := getEnv("TOKEN_TTL", ""); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTOKEN_TTL: %w", envPrefix, err)
		}
		c.TokenTTL = ttl
	}
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SessionDir = getEnv("SESSION_DIR", c.SessionDir)
	c.SeedFile = getEnv("SEED_FILE", c.SeedFile)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if origins := getEnvSlice("ALLOWED_ORIGINS"); len(origins) > 0 {
		c.AllowedOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Save persists the config to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		return value
	}
	return defaultValue
}

func getEnvSlice(key string) []string {
	value := getEnv(key, "")
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
