// Package python provides the Python interpreter adapter for the clipfix
// launcher.
//
// The interpreter is RustPython compiled to wasm32-wasi. Unlike a sandbox
// that embeds its runtime, a launcher distributes the interpreter as a
// runtime asset: Module resolves python.wasm from disk, and a missing
// asset is the launcher's canonical startup failure. Use clipfixctl fetch
// to install it.
package python

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed shim.py
var shim string

// EnvWasmPath overrides the interpreter asset location.
const EnvWasmPath = "CLIPFIX_PYTHON_WASM"

const assetName = "python.wasm"

// Python implements launcher.Language.
type Python struct {
	wasmPath string
}

type Option func(*Python)

// WithWasmPath pins the interpreter asset to an explicit path, bypassing
// the search order.
func WithWasmPath(path string) Option {
	return func(p *Python) { p.wasmPath = path }
}

// New returns a Python adapter. Without options the asset is searched in
// order: $CLIPFIX_PYTHON_WASM, next to the executable, then the XDG data
// directory.
func New(opts ...Option) *Python {
	p := &Python{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "python".
func (p *Python) Name() string {
	return "python"
}

// Module reads the RustPython wasm binary from disk.
func (p *Python) Module() ([]byte, error) {
	path, err := p.locate()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read interpreter asset: %w", err)
	}
	return data, nil
}

func (p *Python) locate() (string, error) {
	if p.wasmPath != "" {
		return p.wasmPath, nil
	}
	if path := os.Getenv(EnvWasmPath); path != "" {
		return path, nil
	}

	var searched []string
	for _, dir := range searchDirs() {
		path := filepath.Join(dir, assetName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		searched = append(searched, path)
	}
	return "", fmt.Errorf("%s not found (searched %v); run clipfixctl fetch", assetName, searched)
}

func searchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		dirs = append(dirs, filepath.Join(dir, "clipfix"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "clipfix"))
	}
	return dirs
}

// WrapBootstrap prepends the host-call shim so clipfix_host is importable
// before any application code runs.
func (p *Python) WrapBootstrap(unit string) string {
	return shim + "\n" + unit
}

// Args builds the interpreter argv. Pass-through arguments land in
// sys.argv for the embedded program's own argument parser.
func (p *Python) Args(wrapped string, passthrough []string) []string {
	return append([]string{"python", "-c", wrapped}, passthrough...)
}
