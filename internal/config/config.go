package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Server holds the runtime settings of the HTTP service. Zero values mean
// "use the default".
type Server struct {
	Listen            string        `yaml:"listen" ini:"listen"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" ini:"read_header_timeout"`
	ConvertTimeout    time.Duration `yaml:"convert_timeout" ini:"convert_timeout"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout" ini:"fetch_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" ini:"shutdown_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" ini:"max_body_bytes"`
	UserAgent         string        `yaml:"user_agent" ini:"user_agent"`
	LogLevel          string        `yaml:"log_level" ini:"log_level"`
}

const (
	DefaultListen   = "127.0.0.1:25500"
	DefaultLogLevel = "info"
)

func (s Server) WithDefaults() Server {
	if strings.TrimSpace(s.Listen) == "" {
		s.Listen = DefaultListen
	}
	if s.ReadHeaderTimeout <= 0 {
		s.ReadHeaderTimeout = 5 * time.Second
	}
	if s.ConvertTimeout <= 0 {
		s.ConvertTimeout = 60 * time.Second
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = 15 * time.Second
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = 5 * 1024 * 1024
	}
	if strings.TrimSpace(s.LogLevel) == "" {
		s.LogLevel = DefaultLogLevel
	}
	return s
}

// Load reads a .yaml/.yml or .ini file. An empty path returns defaults.
func Load(path string) (Server, error) {
	if strings.TrimSpace(path) == "" {
		return Server{}.WithDefaults(), nil
	}

	var cfg Server
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return Server{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Server{}, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".ini":
		f, err := ini.Load(path)
		if err != nil {
			return Server{}, fmt.Errorf("read ini config: %w", err)
		}
		if err := f.MapTo(&cfg); err != nil {
			return Server{}, fmt.Errorf("parse ini config: %w", err)
		}
	default:
		return Server{}, fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .ini)", ext)
	}
	return cfg.WithDefaults(), nil
}
