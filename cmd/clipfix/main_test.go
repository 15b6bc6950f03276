package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/clipfix/clipfix/internal/assets"
	"github.com/clipfix/clipfix/launcher"
)

func TestRunFailsWhenStateDirCannotBeCreated(t *testing.T) {
	dir := t.TempDir()

	// A regular file where a path component of the state dir should be
	// makes MkdirAll fail.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest := filepath.Join(dir, "clipfix.toml")
	body := "[dirs]\nstate = \"" + filepath.Join(blocker, "state") + "\"\n"
	if err := os.WriteFile(manifest, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(assets.EnvConfig, manifest)

	if status := run(); status != launcher.ExitStartupFailure {
		t.Errorf("expected ExitStartupFailure, got %d", status)
	}
}
