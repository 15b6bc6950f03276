// Package hostfunc provides the host capabilities reachable from the
// embedded clipfix program.
//
// WASI preview1 gives the interpreter files and clocks, but no sockets and
// no clipboard. Everything else the application needs crosses the runtime
// boundary as a host function call: the Python side writes a framed request
// on stderr and reads the response from stdin (see the launcher package).
//
// # Registry
//
//	registry := hostfunc.NewRegistry()
//	registry.Register("clipboard_read", hostfunc.NewClipboard().Read)
//
// # Built-in Capabilities
//
// Clipboard: read/write through the platform's clipboard tool, replacing
// the pyperclip dependency the original application had. See [Clipboard].
//
// HTTP: allowed-host-gated requests so the formatter's LLM calls work
// without handing the interpreter general network access. See [HTTP].
package hostfunc
