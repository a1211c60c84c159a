// Package config loads the quiz configuration file and applies
// environment overrides.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes the question sources, the exam pools built from them
// and the round settings.
type Config struct {
	Round   RoundConfig    `yaml:"round"`
	Assets  AssetsConfig   `yaml:"assets"`
	Sources []SourceConfig `yaml:"sources"`
	Exams   []ExamConfig   `yaml:"exams"`
	Server  ServerConfig   `yaml:"server"`
	LogMode string         `yaml:"log_mode"`
}

type RoundConfig struct {
	Size          int `yaml:"size"`
	PassThreshold int `yaml:"pass_threshold"`
	MaxSize       int `yaml:"max_size"`
}

type AssetsConfig struct {
	Extensions []string `yaml:"extensions"`
}

// SourceConfig is one question file and the strategy that reads it.
// Assets names the directory holding the source's question images.
type SourceConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Assets string `yaml:"assets"`
}

// ExamConfig draws from two sources at once, half from each.
type ExamConfig struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Sources []string `yaml:"sources"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TLSCert        string   `yaml:"tls_cert"`
	TLSKey         string   `yaml:"tls_key"`
}

const (
	DefaultRoundSize     = 10
	DefaultPassThreshold = 7
	DefaultMaxRoundSize  = 50
)

// Load reads, parses, normalizes and validates the config at path.
// Relative source and asset paths are resolved against the file's
// directory. Environment overrides are applied before validation.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	ResolvePaths(&cfg, filepath.Dir(path))
	ApplyEnv(&cfg)
	Normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the round settings used when the file leaves them out.
func Defaults() Config {
	return Config{Round: RoundConfig{
		Size:          DefaultRoundSize,
		PassThreshold: DefaultPassThreshold,
		MaxSize:       DefaultMaxRoundSize,
	}}
}

// Parse decodes a single YAML document over Defaults, rejecting unknown
// fields. Keys present in the document win, so an explicit
// pass_threshold of 0 is kept.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if err == io.EOF {
			return Config{}, fmt.Errorf("parse config: empty document")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Config{}, fmt.Errorf("parse config: multiple documents are not supported")
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ResolvePaths makes local source and asset paths relative to baseDir.
// URLs are left untouched.
func ResolvePaths(cfg *Config, baseDir string) {
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if src.Path != "" && !isURL(src.Path) && !filepath.IsAbs(src.Path) {
			src.Path = filepath.Join(baseDir, src.Path)
		}
		if src.Assets != "" && !filepath.IsAbs(src.Assets) {
			src.Assets = filepath.Join(baseDir, src.Assets)
		}
	}
}

// Normalize trims identifiers and fills defaults. The pass threshold is
// left alone since 0 is a valid setting.
func Normalize(cfg *Config) {
	if cfg.Round.Size == 0 {
		cfg.Round.Size = DefaultRoundSize
	}
	if cfg.Round.MaxSize == 0 {
		cfg.Round.MaxSize = DefaultMaxRoundSize
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "https://localhost:5173"}
	}
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		src.ID = strings.TrimSpace(src.ID)
		src.Format = strings.ToLower(strings.TrimSpace(src.Format))
		if src.Format == "" {
			src.Format = "columns"
		}
		if strings.TrimSpace(src.Name) == "" {
			src.Name = src.ID
		}
	}
	for i := range cfg.Exams {
		exam := &cfg.Exams[i]
		exam.ID = strings.TrimSpace(exam.ID)
		if strings.TrimSpace(exam.Name) == "" {
			exam.Name = exam.ID
		}
		for j, a := range exam.Aliases {
			exam.Aliases[j] = strings.ToLower(strings.TrimSpace(a))
		}
		for j, s := range exam.Sources {
			exam.Sources[j] = strings.TrimSpace(s)
		}
	}
}

func isURL(p string) bool {
	l := strings.ToLower(p)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
