package internal

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Document.Dir = filepath.Join(dir, "docs")
	cfg.Ledger.Path = filepath.Join(dir, "ledger.db")
	return cfg
}

func TestOpen(t *testing.T) {
	cfg := testConfig(t)
	a, err := Open(WithConfig(cfg), WithFile("issue.md"), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if a.File != "issue.md" {
		t.Errorf("File = %q, want issue.md", a.File)
	}
	if err := a.Service.Create(context.Background(), a.File); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, err := a.store.Exists("issue.md"); err != nil || !ok {
		t.Errorf("document not created: %v", err)
	}
}

func TestOpen_RequiresConfig(t *testing.T) {
	if _, err := Open(); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_InvalidScheduleFailsBeforeStarting(t *testing.T) {
	cfg := testConfig(t)
	cfg.App.Schedule = "whenever"

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)) }()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "scheduler") {
			t.Fatalf("Run err = %v, want scheduler parse error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
