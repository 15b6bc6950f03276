// The clipfix binary is the native launcher: it boots the embedded Python
// interpreter, hands control to clipfix.main, and exits with whatever
// status the entry point reports. It parses no flags of its own;
// os.Args[1:] belongs to the embedded program.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/clipfix/clipfix/hostfunc"
	"github.com/clipfix/clipfix/internal/assets"
	"github.com/clipfix/clipfix/internal/logging"
	"github.com/clipfix/clipfix/language/python"
	"github.com/clipfix/clipfix/launcher"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := assets.Resolve(assets.Locate())
	if err != nil {
		fmt.Fprintf(os.Stderr, "clipfix: %v\n", err)
		return launcher.ExitStartupFailure
	}

	registry := hostfunc.NewRegistry()
	clipboard := hostfunc.NewClipboard()
	registry.Register("clipboard_read", clipboard.Read)
	registry.Register("clipboard_write", clipboard.Write)
	if len(cfg.AllowedHosts) > 0 {
		web := hostfunc.NewHTTP(hostfunc.HTTPConfig{AllowedHosts: cfg.AllowedHosts})
		registry.Register("http_request", web.Request)
	}

	opts := []launcher.Option{
		launcher.WithArgs(os.Args[1:]),
		launcher.WithEnviron(os.Environ()),
		launcher.WithRegistry(registry),
		launcher.WithCompilationCache(cfg.CacheDir),
		launcher.WithLogger(logging.FromEnv(os.Stderr)),
		launcher.WithEnv("PYTHONPATH", "/app:/packages"),
		launcher.WithEnv("HOME", "/state"),
	}
	if cfg.MemoryPages > 0 {
		opts = append(opts, launcher.WithMemoryLimit(cfg.MemoryPages))
	}
	if dirExists(cfg.AppDir) {
		opts = append(opts, launcher.WithReadOnlyMount(cfg.AppDir, "/app"))
	}
	if dirExists(cfg.PackagesDir) {
		opts = append(opts, launcher.WithReadOnlyMount(cfg.PackagesDir, "/packages"))
	}
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "clipfix: cannot create state dir: %v\n", err)
		return launcher.ExitStartupFailure
	}
	opts = append(opts, launcher.WithMount(cfg.StateDir, "/state"))

	var langOpts []python.Option
	if cfg.Interpreter != "" {
		langOpts = append(langOpts, python.WithWasmPath(cfg.Interpreter))
	}

	return launcher.Launch(context.Background(), python.New(langOpts...), opts...)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
