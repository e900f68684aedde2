package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fakeProbe returns fixed durations keyed by file base name. Unknown names
// fail like an unreadable file would.
type fakeProbe struct {
	mu        sync.Mutex
	durations map[string]float64
	calls     map[string]int
}

func newFakeProbe(durations map[string]float64) *fakeProbe {
	return &fakeProbe{durations: durations, calls: make(map[string]int)}
}

func (f *fakeProbe) Probe(_ context.Context, path string) ProbeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[path]++
	seconds, ok := f.durations[filepath.Base(path)]
	if !ok {
		return Unmeasured(errors.New("not media"))
	}
	return Measured(seconds)
}

func (f *fakeProbe) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
