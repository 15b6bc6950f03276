// Package clipfix is the native launcher for the clipfix application.
//
// # Overview
//
// clipfix itself is a Python program. This repository provides the thin
// native shell around it: it boots an embedded Python interpreter (compiled
// to WebAssembly, executed with wazero) inside the host process, runs a
// fixed bootstrap that imports clipfix.main and invokes its entry point,
// and exits the process with whatever status the entry point reports.
//
// # Basic Usage
//
//	lang := python.New()
//	os.Exit(launcher.Launch(context.Background(), lang,
//	    launcher.WithArgs(os.Args[1:]),
//	    launcher.WithEnviron(os.Environ()),
//	))
//
// The launcher interprets no flags and no environment variables of its own;
// the argument surface belongs entirely to the embedded program. The only
// host-side knobs are runtime-asset locations, resolved by
// the internal assets package from an optional clipfix.toml next to the
// executable.
//
// # Host Capabilities
//
// WASI gives the embedded program files and clocks but no clipboard and no
// sockets. The [hostfunc] package bridges those: host functions are invoked
// from Python over a framed stderr channel and answered on stdin.
//
// See the [launcher], [hostfunc], and [language/python] packages for
// detailed API documentation, and cmd/clipfixctl for asset management.
package clipfix
