package launcher

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/clipfix/clipfix/hostfunc"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Language adapts one embedded interpreter for the launcher.
type Language interface {
	// Name returns a unique identifier, e.g. "python".
	Name() string

	// Module returns the interpreter's wasm binary. It is resolved from
	// disk at startup; a missing or unreadable asset is a startup failure.
	Module() ([]byte, error)

	// WrapBootstrap prepends the host-call shim or any other
	// language-specific preamble to the bootstrap unit.
	WrapBootstrap(unit string) string

	// Args builds the interpreter argv for the wrapped unit, with the
	// host's pass-through arguments appended.
	Args(wrapped string, passthrough []string) []string
}

// Session is one embedded-interpreter instance bound to the host process:
// a wazero runtime with WASI instantiated and the interpreter module
// compiled. At most one Session exists per process; it boots at most once
// and Close is safe on every path.
type Session struct {
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	compiled wazero.CompiledModule
	lang     Language
	cfg      config

	mu     sync.Mutex
	booted bool
	closed bool
}

// NewSession initializes the embedded runtime. Initialization is
// all-or-nothing: on error nothing is leaked and no bootstrap code has run.
func NewSession(ctx context.Context, lang Language, opts ...Option) (*Session, error) {
	return newSession(ctx, lang, newConfig(opts))
}

func newSession(ctx context.Context, lang Language, cfg config) (*Session, error) {
	module, err := lang.Module()
	if err != nil {
		return nil, fmt.Errorf("load %s interpreter: %w", lang.Name(), err)
	}

	var cache wazero.CompilationCache
	if cfg.cacheDir != "" {
		cache, err = wazero.NewCompilationCacheWithDir(cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create compilation cache: %w", err)
		}
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}
	if cfg.memPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	start := time.Now()
	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, fmt.Errorf("compile %s interpreter: %w", lang.Name(), err)
	}
	cfg.log.Debug().
		Str("language", lang.Name()).
		Dur("compile", time.Since(start)).
		Msg("interpreter compiled")

	return &Session{
		runtime:  rt,
		cache:    cache,
		compiled: compiled,
		lang:     lang,
		cfg:      cfg,
	}, nil
}

// Boot runs the bootstrap unit to completion and classifies its outcome.
// It may be called once per Session; the embedded program runs for as long
// as the process is meant to be alive, so there is no timeout here.
func (s *Session) Boot(ctx context.Context, unit string) BootResult {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return BootResult{Err: ErrSessionClosed}
	case s.booted:
		s.mu.Unlock()
		return BootResult{Err: ErrAlreadyBooted}
	}
	s.booted = true
	s.mu.Unlock()

	registry := s.cfg.registry
	if registry == nil {
		registry = hostfunc.NewRegistry()
	}

	stdinReader, stdinWriter := io.Pipe()
	defer stdinReader.Close()
	defer stdinWriter.Close()
	protocol := newProtocolHandler(ctx, registry, stdinWriter, s.cfg.stderr)

	wrapped := s.lang.WrapBootstrap(unit)
	args := s.lang.Args(wrapped, s.cfg.args)

	moduleConfig := wazero.NewModuleConfig().
		WithStdout(s.cfg.stdout).
		WithStderr(protocol).
		WithStdin(stdinReader).
		WithArgs(args...).
		WithName("")

	for k, v := range s.cfg.env {
		moduleConfig = moduleConfig.WithEnv(k, v)
	}

	if len(s.cfg.mounts) > 0 {
		fsConfig := wazero.NewFSConfig()
		for _, m := range s.cfg.mounts {
			if m.readOnly {
				fsConfig = fsConfig.WithReadOnlyDirMount(m.host, m.guest)
			} else {
				fsConfig = fsConfig.WithDirMount(m.host, m.guest)
			}
		}
		moduleConfig = moduleConfig.WithFSConfig(fsConfig)
	}

	s.cfg.log.Debug().Str("language", s.lang.Name()).Msg("booting")
	mod, err := s.runtime.InstantiateModule(ctx, s.compiled, moduleConfig)
	if mod != nil {
		mod.Close(ctx)
	}

	res := resultFromRun(err)
	s.cfg.log.Debug().
		Int("status", res.Status).
		Bool("explicit", res.Explicit).
		Msg("bootstrap finished")
	return res
}

// Close tears the runtime down. Idempotent; safe after a failed boot.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	ctx := context.Background()

	var errs []error
	if err := s.runtime.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.cache != nil {
		if err := s.cache.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
