package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  bind_addr: \"127.0.0.1:1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.inner == nil {
		t.Error("expected non-nil underlying confloader watcher")
	}
}

func TestWatcher_OnChangeFires(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  bind_addr: \"127.0.0.1:1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	got := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) { got <- cfg })
	w.StartAsync()

	if err := os.WriteFile(path, []byte("server:\n  bind_addr: \"127.0.0.1:2\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-got:
		if cfg.Server.BindAddr != "127.0.0.1:2" {
			t.Errorf("reloaded BindAddr = %q", cfg.Server.BindAddr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload callback")
	}
}
