package artifact

import (
	"os"
	"strings"
	"testing"

	"webshot/internal/log"
)

func TestMain(m *testing.M) {
	log.InitLogger()
	os.Exit(m.Run())
}

func TestRegistryCreateAndClose(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	first, err := registry.Create([]byte("first"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := registry.Create([]byte("second"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if first == second {
		t.Errorf("Create() returned the same path twice: %v", first)
	}
	if !strings.HasSuffix(first, ".png") {
		t.Errorf("artifact path %v is not a .png", first)
	}
	if !strings.HasPrefix(first, registry.Dir()) {
		t.Errorf("artifact %v is outside registry dir %v", first, registry.Dir())
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("artifact content = %q, want %q", data, "first")
	}

	registry.Close()

	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("artifact %v still exists after Close", path)
		}
	}
	if _, err := os.Stat(registry.Dir()); !os.IsNotExist(err) {
		t.Errorf("registry dir %v still exists after Close", registry.Dir())
	}
}

func TestRegistryCloseIsIdempotent(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if _, err := registry.Create([]byte("data")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	registry.Close()
	registry.Close()
}

func TestRegistryRejectsCreateAfterClose(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	registry.Close()

	if _, err := registry.Create([]byte("late")); err == nil {
		t.Error("Create() after Close error = nil, want error")
	}
}

func TestRegistryToleratesExternallyRemovedFiles(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	path, err := registry.Create([]byte("data"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove artifact: %v", err)
	}

	// Cleanup is best effort; a missing file must not panic or escalate.
	registry.Close()
}
