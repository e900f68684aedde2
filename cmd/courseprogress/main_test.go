package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func courseDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"Intro/a.mp4", "Basics/b.mp4", "readme.md"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return root
}

func missingFFprobe(t *testing.T) string {
	return filepath.Join(t.TempDir(), "ffprobe")
}

func TestGenerate_WritesWorkbookAndReports(t *testing.T) {
	// Given
	root := courseDir(t)
	out := filepath.Join(t.TempDir(), "progress.xlsx")

	// When
	stdout, _, err := run(t, "generate", root, "-o", out, "--ffprobe", missingFFprobe(t))

	// Then
	require.NoError(t, err)
	assert.Equal(t, "Excel file '"+out+"' created successfully.\n", stdout)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	sections := []string{}
	for _, cell := range []string{"A2", "A3"} {
		v, err := f.GetCellValue("Course Progress", cell)
		require.NoError(t, err)
		sections = append(sections, v)
	}
	assert.Equal(t, []string{"Basics", "Intro"}, sections)
}

func TestRoot_DefaultsToGenerate(t *testing.T) {
	root := courseDir(t)
	out := filepath.Join(t.TempDir(), "progress.xlsx")

	stdout, _, err := run(t, root, "--output", out, "--ffprobe", missingFFprobe(t))

	require.NoError(t, err)
	assert.Contains(t, stdout, "created successfully")
	assert.FileExists(t, out)
}

func TestGenerate_ConfigFileWithFlagOverride(t *testing.T) {
	// Given a config naming an output the flag overrides
	root := courseDir(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
scan:
  section_key: base
report:
  output: `+filepath.Join(dir, "from-config.xlsx")+`
logging:
  level: error
  pretty: false
`), 0o644))
	out := filepath.Join(dir, "from-flag.xlsx")

	// When
	_, _, err := run(t, "generate", root, "-c", cfgPath, "-o", out, "--ffprobe", missingFFprobe(t))

	// Then
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "from-config.xlsx"))
}

func TestGenerate_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "missing root", args: []string{"generate", filepath.Join(t.TempDir(), "absent")}},
		{name: "invalid section key", args: []string{"generate", t.TempDir(), "--section-key", "name"}},
		{name: "too many args", args: []string{"generate", "a", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "progress.xlsx")
			args := append(tc.args, "-o", out, "--ffprobe", missingFFprobe(t))

			stdout, stderr, err := run(t, args...)

			assert.Error(t, err)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error:")
			assert.NoFileExists(t, out)
		})
	}
}
