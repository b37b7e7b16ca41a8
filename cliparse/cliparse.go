package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 3000
	DefaultDatabase   = "anonchat"
	DefaultSessionTTL = 30 * 24 * time.Hour
	DefaultEmailFrom  = "AnonChat <onboarding@resend.dev>"
	DefaultBaseURL    = "http://localhost:3000"
)

type Config struct {
	Port         int
	MongoURI     string
	DatabaseName string
	ResendAPIKey string
	EmailFrom    string
	BaseURL      string
	AppEnv       string
	ConfigFile   string

	Tuning Tuning
}

// Tuning holds the optional YAML settings. Zero values mean "use the
// package default" downstream.
type Tuning struct {
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout"`
	SocketTimeout          time.Duration `yaml:"socket_timeout"`
	ConnectTimeout         time.Duration `yaml:"connect_timeout"`
	HeartbeatInterval      time.Duration `yaml:"heartbeat_interval"`
	AttemptTimeout         time.Duration `yaml:"attempt_timeout"`
	MaxPoolSize            uint64        `yaml:"max_pool_size"`
	SessionTTL             time.Duration `yaml:"session_ttl"`
}

// IsProduction reports whether APP_ENV is "production"
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MailerEnabled reports whether verification emails can be sent
func (c Config) MailerEnabled() bool {
	return c.ResendAPIKey != ""
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	fs := flag.NewFlagSet("anonchat", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseName, "db", "", "MongoDB database name")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL")
	fs.StringVar(&cfg.AppEnv, "env", "", "Application environment")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML tuning file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.MongoURI, "u", "", "MongoDB connection string (prefer env)")
	fs.StringVar(&cfg.ResendAPIKey, "resend-key", "", "Resend API key (prefer env)")
	fs.StringVar(&cfg.EmailFrom, "email-from", "", "Verification email sender")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	// MONGODB_URI is not required here: the connection manager reports a
	// missing or malformed value, and the diagnostic routes still serve.
	fallback(&cfg.MongoURI, "MONGODB_URI", "")
	fallback(&cfg.DatabaseName, "MONGODB_DATABASE", DefaultDatabase)
	fallback(&cfg.ResendAPIKey, "RESEND_API_KEY", "")
	fallback(&cfg.EmailFrom, "EMAIL_FROM", DefaultEmailFrom)
	fallback(&cfg.BaseURL, "BASE_URL", DefaultBaseURL)
	fallback(&cfg.AppEnv, "APP_ENV", "development")
	fallback(&cfg.ConfigFile, "CONFIG_FILE", "")

	if cfg.ConfigFile != "" {
		t, err := LoadTuning(cfg.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Tuning = t
	}
	if cfg.Tuning.SessionTTL <= 0 {
		cfg.Tuning.SessionTTL = DefaultSessionTTL
	}

	return cfg, nil
}

func fallback(dst *string, env, def string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
	if *dst == "" {
		*dst = def
	}
}

// LoadTuning reads a YAML tuning file and expands ${VAR} references
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var t Tuning
	if err := yaml.Unmarshal([]byte(expanded), &t); err != nil {
		return Tuning{}, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("validate config: %w", err)
	}

	return t, nil
}

// Validate rejects negative durations
func (t Tuning) Validate() error {
	for name, d := range map[string]time.Duration{
		"server_selection_timeout": t.ServerSelectionTimeout,
		"socket_timeout":           t.SocketTimeout,
		"connect_timeout":          t.ConnectTimeout,
		"heartbeat_interval":       t.HeartbeatInterval,
		"attempt_timeout":          t.AttemptTimeout,
		"session_ttl":              t.SessionTTL,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
