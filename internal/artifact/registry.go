package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"webshot/internal/log"
)

// Registry tracks the temporary screenshot files created during one run and
// removes them when the run's top-level scope exits. Each run owns its
// registry; nothing is shared across runs or reaped at process teardown.
type Registry struct {
	mu     sync.Mutex
	dir    string
	files  []string
	closed bool
}

// NewRegistry creates a private directory for the run's artifacts.
func NewRegistry() (*Registry, error) {
	dir, err := os.MkdirTemp("", "webshot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}
	return &Registry{dir: dir}, nil
}

// Create writes data to a uniquely named PNG inside the registry's directory
// and records it for cleanup. Safe for concurrent use.
func (r *Registry) Create(data []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", fmt.Errorf("artifact registry is closed")
	}

	path := filepath.Join(r.dir, uuid.New().String()+".png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	r.files = append(r.files, path)
	return path, nil
}

// Close removes every registered file and the registry directory. Cleanup is
// best effort: individual removal failures are logged, never escalated.
// Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for _, path := range r.files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Logger.Warn("failed to remove temporary file",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
	if err := os.RemoveAll(r.dir); err != nil {
		log.Logger.Warn("failed to remove artifact dir",
			zap.String("dir", r.dir),
			zap.Error(err),
		)
	}

	r.files = nil
}

// Dir exposes the run's artifact directory.
func (r *Registry) Dir() string {
	return r.dir
}
