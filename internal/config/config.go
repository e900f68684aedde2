package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SectionKeyPath = "path"
	SectionKeyBase = "base"
)

type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Probe   ProbeConfig   `yaml:"probe"`
	Cache   CacheConfig   `yaml:"cache"`
	Report  ReportConfig  `yaml:"report"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type ScanConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	SectionKey string   `yaml:"section_key"` // "base" or "path"
	SkipHidden bool     `yaml:"skip_hidden"`
}

type ProbeConfig struct {
	FFprobePath string        `yaml:"ffprobe_path"`
	Timeout     time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	Path     string `yaml:"path"` // empty disables the on-disk cache
	Capacity int    `yaml:"capacity"`
}

type ReportConfig struct {
	Output    string `yaml:"output"`
	SheetName string `yaml:"sheet_name"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Root:       "",
			Extensions: []string{".mp4", ".mkv", ".mov", ".avi", ".webm"},
			SectionKey: SectionKeyBase,
		},
		Probe: ProbeConfig{
			FFprobePath: "",
			Timeout:     30 * time.Second,
		},
		Cache: CacheConfig{
			Path:     "",
			Capacity: 4096,
		},
		Report: ReportConfig{
			Output:    "course_progress.xlsx",
			SheetName: "Course Progress",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         6541,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Scan.SectionKey {
	case SectionKeyPath, SectionKeyBase:
	default:
		return fmt.Errorf("invalid scan.section_key %q: want %q or %q", c.Scan.SectionKey, SectionKeyPath, SectionKeyBase)
	}

	valid := 0
	for _, ext := range c.Scan.Extensions {
		if strings.TrimSpace(ext) != "" {
			valid++
		}
	}
	if valid == 0 {
		return fmt.Errorf("scan.extensions must not be empty")
	}

	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if strings.TrimSpace(c.Report.Output) == "" {
		return fmt.Errorf("report.output must not be empty")
	}
	if strings.TrimSpace(c.Report.SheetName) == "" {
		return fmt.Errorf("report.sheet_name must not be empty")
	}
	return nil
}
