package extprog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stxpipe/internal/core"
)

func TestResolvePresent(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "stxtyper")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fake executable: %v", err)
	}
	t.Setenv("PATH", dir)

	path, err := Resolve("stxtyper")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != bin {
		t.Fatalf("resolved %q, want %q", path, bin)
	}
	if err := Ensure("stxtyper"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
}

func TestResolveMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if _, err := Resolve("stxtyper"); !errors.Is(err, core.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if err := Ensure("stxtyper"); !errors.Is(err, core.ErrConfig) {
		t.Fatalf("expected ErrConfig from Ensure, got %v", err)
	}
}
