package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Configuration struct {
	// ListenAddr is the game's TCP address.
	ListenAddr string `yaml:"listen_addr"`
	// HTTPAddr serves /ws, /healthz and /stats. Empty disables it.
	HTTPAddr     string        `yaml:"http_addr"`
	TickInterval time.Duration `yaml:"tick_interval"`
	// WriteTimeout bounds a single write to a player. Zero means no limit.
	WriteTimeout time.Duration `yaml:"write_timeout"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	RandomServe  bool          `yaml:"random_serve"`
	// LobbyKey pins the lobby id key as 64 hex characters. Empty means a
	// random key per process.
	LobbyKey      string `yaml:"lobby_key"`
	MaxIDAttempts int    `yaml:"max_id_attempts"`
}

func Default() Configuration {
	return Configuration{
		ListenAddr:    "127.0.0.1:8080",
		TickInterval:  100 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
		MaxIDAttempts: 8,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path (DefaultPath if empty), then PONG_* variables. Variables already in the
// environment win over the ones read from envFiles. A missing config or env
// file is not an error.
func LoadConfig(path string, envFiles ...string) (Configuration, error) {
	c := Default()

	if path == "" {
		path = DefaultPath
	}
	cf, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no config file found, using defaults", slog.String("path", path))
	case err != nil:
		return c, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(cf, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	dotenv := make(map[string]string)
	for _, f := range envFiles {
		vars, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return c, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range vars {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := c.applyEnv(lookup); err != nil {
		return c, err
	}

	return c, c.Validate()
}

func (c *Configuration) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	str("PONG_LISTEN_ADDR", &c.ListenAddr)
	str("PONG_HTTP_ADDR", &c.HTTPAddr)
	str("PONG_LOG_LEVEL", &c.LogLevel)
	str("PONG_LOG_FORMAT", &c.LogFormat)
	str("PONG_LOBBY_KEY", &c.LobbyKey)

	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	dur("PONG_TICK_INTERVAL", &c.TickInterval)
	dur("PONG_WRITE_TIMEOUT", &c.WriteTimeout)

	if v, ok := lookup("PONG_RANDOM_SERVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PONG_RANDOM_SERVE: %w", err))
		} else {
			c.RandomServe = b
		}
	}
	if v, ok := lookup("PONG_MAX_ID_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PONG_MAX_ID_ATTEMPTS: %w", err))
		} else {
			c.MaxIDAttempts = n
		}
	}
	return errors.Join(errs...)
}

func (c Configuration) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("write_timeout must not be negative, got %s", c.WriteTimeout))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if _, err := c.LobbyKeyBytes(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxIDAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_id_attempts must be at least 1, got %d", c.MaxIDAttempts))
	}
	return errors.Join(errs...)
}

func (c Configuration) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// LobbyKeyBytes decodes LobbyKey. It returns nil when no key is pinned.
func (c Configuration) LobbyKeyBytes() ([]byte, error) {
	if c.LobbyKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.LobbyKey)
	if err != nil {
		return nil, fmt.Errorf("lobby_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("lobby_key must be 64 hex characters, got %d", len(c.LobbyKey))
	}
	return key, nil
}

// Logger returns a logger writing to w at the configured level and format.
func (c Configuration) Logger(w io.Writer) *slog.Logger {
	level, _ := c.Level()
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	if strings.ToLower(c.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
