package store

import (
	"errors"
	"path/filepath"
	"testing"

	"restui/internal/config"
)

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestBackendsPersistDocuments(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "history.db")

			b, err := Open(driver, path)
			if err != nil {
				t.Fatalf("failed to open backend: %v", err)
			}
			defer b.Close()

			doc, err := b.Load("savedTransactions")
			if err != nil {
				t.Fatalf("failed to load absent key: %v", err)
			}
			if doc != nil {
				t.Errorf("expected nil document for absent key, got %q", doc)
			}

			if err := b.Save("savedTransactions", []byte(`[{"id":"a"}]`)); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
			if err := b.Save("savedTransactions", []byte(`[]`)); err != nil {
				t.Fatalf("failed to overwrite: %v", err)
			}

			doc, err = b.Load("savedTransactions")
			if err != nil {
				t.Fatalf("failed to load: %v", err)
			}
			if string(doc) != "[]" {
				t.Errorf("expected '[]', got '%s'", doc)
			}
		})
	}
}

func TestBackendsSurviveReopen(t *testing.T) {
	for _, driver := range []string{"sqlite", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.db")

			b, err := Open(driver, path)
			if err != nil {
				t.Fatalf("failed to open backend: %v", err)
			}
			if err := b.Save("k", []byte(`[1]`)); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
			if err := b.Close(); err != nil {
				t.Fatalf("failed to close: %v", err)
			}

			b, err = Open(driver, path)
			if err != nil {
				t.Fatalf("failed to reopen backend: %v", err)
			}
			defer b.Close()

			doc, err := b.Load("k")
			if err != nil {
				t.Fatalf("failed to load: %v", err)
			}
			if string(doc) != "[1]" {
				t.Errorf("expected '[1]', got '%s'", doc)
			}
		})
	}
}

func TestMemoryBackendClosed(t *testing.T) {
	b := NewMemoryBackend()
	b.Close()

	if _, err := b.Load("k"); err == nil {
		t.Error("expected error after close")
	}
	if err := b.Save("k", nil); err == nil {
		t.Error("expected error after close")
	}
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(config.StoreConfig{Driver: "bolt", Path: filepath.Join(t.TempDir(), "h.db"), CollectionKey: "tabs"}, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	if s.Key() != "tabs" {
		t.Errorf("expected key 'tabs', got '%s'", s.Key())
	}

	if _, err := FromConfig(config.StoreConfig{Driver: "csv"}, nil); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}
