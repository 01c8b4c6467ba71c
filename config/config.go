package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultDatabaseURL is used when neither DATABASE_URL nor DATABASE_URL_ALT
// is set: a local SQLite file next to the binary.
const DefaultDatabaseURL = "sqlite://projects.db"

// Config is the process-wide configuration. It is built once in main and
// handed to the store and the handlers; nothing mutates it afterwards.
type Config struct {
	SecretKey    string
	PasswordHash string
	DatabaseURL  string
	Listen       string
	Log          string
	LogLevel     string
	RateLimit    string
	Env          string
}

// Development reports whether APP_ENV asks for relaxed security headers.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

// File-based configuration. Reads config/config.json if present and
// exports values into environment variables that are not already set.
// Keys map to env vars as follows:
//
//	database_url -> DATABASE_URL
//	secret_key   -> SECRET_KEY
//	password     -> PASSWORD (hashed)
//	log          -> LOG ("1" to enable)
//	log_level    -> LOG_LEVEL (debug|info|error|off)
//	listen       -> LISTEN (e.g. :8080)
//	rate_limit   -> RATE_LIMIT (e.g. 30-M)
//	env          -> APP_ENV
type cfg struct {
	DatabaseURL string `json:"database_url"`
	SecretKey   string `json:"secret_key"`
	Password    string `json:"password"`
	Log         string `json:"log"`
	LogLevel    string `json:"log_level"`
	Listen      string `json:"listen"`
	RateLimit   string `json:"rate_limit"`
	Env         string `json:"env"`
}

func setEnvIfUnset(key, val string) {
	if val == "" {
		return
	}
	if _, ok := os.LookupEnv(key); ok {
		return
	}
	_ = os.Setenv(key, val)
}

// loadFile reads a JSON config file and exports its values to the
// environment. A missing file is not an error.
func loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	var c cfg
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	setEnvIfUnset("DATABASE_URL", c.DatabaseURL)
	setEnvIfUnset("SECRET_KEY", c.SecretKey)
	setEnvIfUnset("PASSWORD", c.Password)
	setEnvIfUnset("LOG", c.Log)
	setEnvIfUnset("LOG_LEVEL", c.LogLevel)
	setEnvIfUnset("LISTEN", c.Listen)
	setEnvIfUnset("RATE_LIMIT", c.RateLimit)
	setEnvIfUnset("APP_ENV", c.Env)
	return nil
}

// Options controls where Load looks for files.
type Options struct {
	EnvFile  string
	JSONFile string
}

// DefaultOptions reads .env and config/config.json from the working directory.
var DefaultOptions = Options{EnvFile: ".env", JSONFile: "config/config.json"}

// Load builds a Config from the environment after seeding it from the
// optional .env and JSON files. SECRET_KEY and PASSWORD are required.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}
	if opts.JSONFile != "" {
		if err := loadFile(opts.JSONFile); err != nil {
			return nil, err
		}
	}

	c := &Config{
		SecretKey:    os.Getenv("SECRET_KEY"),
		PasswordHash: strings.TrimSpace(os.Getenv("PASSWORD")),
		DatabaseURL:  firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_URL_ALT"), DefaultDatabaseURL),
		Listen:       firstNonEmpty(os.Getenv("LISTEN"), ":8080"),
		Log:          os.Getenv("LOG"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		RateLimit:    firstNonEmpty(os.Getenv("RATE_LIMIT"), "30-M"),
		Env:          firstNonEmpty(os.Getenv("APP_ENV"), "production"),
	}
	if c.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	if c.PasswordHash == "" {
		return nil, errors.New("PASSWORD is required (hashed, see cmd/hashpass)")
	}
	return c, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
