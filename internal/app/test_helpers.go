package app

import (
	"bytes"
	"sync"
	"testing"

	"github.com/vk/chainrig/internal/state"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates an app instance wired against an in-memory state
// store, with logs and output captured.
func SetupAppTest(t *testing.T, cfg Config) (*App, *state.MemoryStore, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	appConfig, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test app config: %v", err)
	}

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	testApp := NewApp(outBuffer, logBuffer, appConfig)

	store := state.NewMemoryStore()
	testApp.SetStore(store)
	return testApp, store, outBuffer, logBuffer
}
