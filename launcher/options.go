package launcher

import (
	"io"
	"os"
	"strings"

	"github.com/clipfix/clipfix/hostfunc"
	"github.com/rs/zerolog"
)

// Option configures a Session.
type Option func(*config)

type mount struct {
	host     string
	guest    string
	readOnly bool
}

type config struct {
	stdout   io.Writer
	stderr   io.Writer
	args     []string
	env      map[string]string
	mounts   []mount
	registry *hostfunc.Registry
	cacheDir string
	memPages uint32
	log      zerolog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    make(map[string]string),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithStdout redirects the embedded program's standard output.
func WithStdout(w io.Writer) Option {
	return func(c *config) { c.stdout = w }
}

// WithStderr redirects the embedded program's standard error and the
// launcher's own diagnostics.
func WithStderr(w io.Writer) Option {
	return func(c *config) { c.stderr = w }
}

// WithArgs passes arguments through to the embedded program, uninterpreted.
func WithArgs(args []string) Option {
	return func(c *config) { c.args = args }
}

// WithEnv sets one environment variable inside the interpreter.
func WithEnv(key, value string) Option {
	return func(c *config) { c.env[key] = value }
}

// WithEnviron passes a host environment (os.Environ form) through to the
// interpreter. Later WithEnv calls override individual keys.
func WithEnviron(environ []string) Option {
	return func(c *config) {
		for _, kv := range environ {
			if k, v, ok := strings.Cut(kv, "="); ok {
				c.env[k] = v
			}
		}
	}
}

// WithRegistry provides the host functions reachable from the embedded
// program over the stderr call channel.
func WithRegistry(r *hostfunc.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithMount exposes a host directory read-write at guestPath.
func WithMount(hostPath, guestPath string) Option {
	return func(c *config) {
		c.mounts = append(c.mounts, mount{host: hostPath, guest: guestPath})
	}
}

// WithReadOnlyMount exposes a host directory read-only at guestPath.
func WithReadOnlyMount(hostPath, guestPath string) Option {
	return func(c *config) {
		c.mounts = append(c.mounts, mount{host: hostPath, guest: guestPath, readOnly: true})
	}
}

// WithCompilationCache enables a persistent wazero compilation cache so
// repeated launches skip recompiling the interpreter module.
func WithCompilationCache(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

// WithMemoryLimit caps interpreter memory. Each page is 64KB; zero means
// the wazero default.
func WithMemoryLimit(pages uint32) Option {
	return func(c *config) { c.memPages = pages }
}

// WithLogger enables launcher tracing. Diagnostics required by the exit
// contract are written to stderr regardless of this setting.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}
