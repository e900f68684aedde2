package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPath_ReturnsDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "course_progress.xlsx", cfg.Report.Output)
	assert.Equal(t, "Course Progress", cfg.Report.SheetName)
	assert.Equal(t, SectionKeyBase, cfg.Scan.SectionKey)
	assert.Equal(t, []string{".mp4", ".mkv", ".mov", ".avi", ".webm"}, cfg.Scan.Extensions)
	assert.Equal(t, 30*time.Second, cfg.Probe.Timeout)
	assert.Empty(t, cfg.Cache.Path)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML_OverridesDefaults(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `scan:
  root: /courses/go
  section_key: path
  skip_hidden: true
probe:
  timeout: 5s
cache:
  path: /tmp/durations.db
report:
  output: go.xlsx
logging:
  level: debug
  pretty: false`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := Load(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "/courses/go", cfg.Scan.Root)
	assert.Equal(t, SectionKeyPath, cfg.Scan.SectionKey)
	assert.True(t, cfg.Scan.SkipHidden)
	assert.Equal(t, 5*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, "/tmp/durations.db", cfg.Cache.Path)
	assert.Equal(t, "go.xlsx", cfg.Report.Output)
	assert.Equal(t, "Course Progress", cfg.Report.SheetName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Pretty)
	assert.Len(t, cfg.Scan.Extensions, 5)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unclosed"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, ok: true},
		{name: "unknown section key", mutate: func(c *Config) { c.Scan.SectionKey = "inode" }},
		{name: "no extensions", mutate: func(c *Config) { c.Scan.Extensions = []string{" "} }},
		{name: "zero timeout", mutate: func(c *Config) { c.Probe.Timeout = 0 }},
		{name: "zero cache capacity", mutate: func(c *Config) { c.Cache.Capacity = 0 }},
		{name: "empty output", mutate: func(c *Config) { c.Report.Output = "" }},
		{name: "empty sheet", mutate: func(c *Config) { c.Report.SheetName = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
