// Package assets resolves the launcher's runtime assets: the interpreter
// binary, the clipfix application tree, the packages directory, and the
// writable state the application keeps. All of it is host-side plumbing;
// none of it is program surface for the embedded code.
package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EnvConfig overrides where clipfix.toml is looked up.
const EnvConfig = "CLIPFIX_CONFIG"

// DefaultInterpreterURL is where clipfixctl fetch pulls the interpreter
// from when the manifest doesn't pin one.
const DefaultInterpreterURL = "https://github.com/RustPython/RustPython/releases/download/v0.4.0/rustpython.wasm"

// Config is the resolved runtime configuration: XDG defaults overlaid
// with an optional clipfix.toml.
type Config struct {
	Interpreter       string // python.wasm; empty means the adapter's own search order
	InterpreterURL    string
	InterpreterSHA256 string

	AppDir      string // clipfix Python sources, mounted read-only at /app
	PackagesDir string // pure-Python wheels, mounted read-only at /packages
	StateDir    string // config/cache/history of the app, mounted read-write at /state
	CacheDir    string // wazero compilation cache

	AllowedHosts []string
	MemoryPages  uint32
	Packages     []string // wheels clipfixctl deps sync installs
}

type fileConfig struct {
	Interpreter struct {
		Path   string `toml:"path"`
		URL    string `toml:"url"`
		SHA256 string `toml:"sha256"`
	} `toml:"interpreter"`
	Dirs struct {
		App      string `toml:"app"`
		Packages string `toml:"packages"`
		State    string `toml:"state"`
		Cache    string `toml:"cache"`
	} `toml:"dirs"`
	Host struct {
		AllowedHosts []string `toml:"allowed_hosts"`
	} `toml:"host"`
	Runtime struct {
		MemoryLimitPages uint32 `toml:"memory_limit_pages"`
	} `toml:"runtime"`
	Deps struct {
		Packages []string `toml:"packages"`
	} `toml:"deps"`
}

// Locate finds clipfix.toml: $CLIPFIX_CONFIG, next to the executable, then
// the XDG config directory. Empty string means no manifest, defaults apply.
func Locate() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exe), "clipfix.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	path := filepath.Join(configDir(), "clipfix.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Resolve builds the configuration from defaults and an optional manifest.
func Resolve(manifestPath string) (Config, error) {
	data := dataDir()
	cfg := Config{
		InterpreterURL: DefaultInterpreterURL,
		AppDir:         filepath.Join(data, "app"),
		PackagesDir:    filepath.Join(data, "packages"),
		StateDir:       stateDir(),
		CacheDir:       cacheDir(),
	}

	if manifestPath == "" {
		return cfg, nil
	}

	var raw fileConfig
	if _, err := toml.DecodeFile(manifestPath, &raw); err != nil {
		return Config{}, fmt.Errorf("load manifest: %w", err)
	}

	if raw.Interpreter.Path != "" {
		cfg.Interpreter = raw.Interpreter.Path
	}
	if raw.Interpreter.URL != "" {
		cfg.InterpreterURL = raw.Interpreter.URL
	}
	cfg.InterpreterSHA256 = raw.Interpreter.SHA256
	if raw.Dirs.App != "" {
		cfg.AppDir = raw.Dirs.App
	}
	if raw.Dirs.Packages != "" {
		cfg.PackagesDir = raw.Dirs.Packages
	}
	if raw.Dirs.State != "" {
		cfg.StateDir = raw.Dirs.State
	}
	if raw.Dirs.Cache != "" {
		cfg.CacheDir = raw.Dirs.Cache
	}
	cfg.AllowedHosts = raw.Host.AllowedHosts
	cfg.MemoryPages = raw.Runtime.MemoryLimitPages
	cfg.Packages = raw.Deps.Packages

	return cfg, nil
}

// InterpreterPath is where fetched interpreter assets land when the
// manifest doesn't pin a location.
func (c Config) InterpreterPath() string {
	if c.Interpreter != "" {
		return c.Interpreter
	}
	return filepath.Join(dataDir(), "python.wasm")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "clipfix")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "clipfix")
	}
	return filepath.Join(os.TempDir(), "clipfix-data")
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "clipfix")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "clipfix")
	}
	return filepath.Join(os.TempDir(), "clipfix-state")
}

func cacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "clipfix")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "clipfix")
	}
	return filepath.Join(os.TempDir(), "clipfix-cache")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "clipfix")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "clipfix")
	}
	return filepath.Join(os.TempDir(), "clipfix-config")
}
