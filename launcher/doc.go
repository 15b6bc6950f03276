// Package launcher owns the lifecycle of the embedded interpreter and the
// bridge between its outcome and the host process exit status.
//
// # Overview
//
// A [Session] is one embedded-interpreter instance: a wazero runtime with
// WASI instantiated and the interpreter module compiled. It is created
// exactly once per process, boots the fixed [Bootstrap] unit exactly once,
// and is torn down on every exit path.
//
//	sess, err := launcher.NewSession(ctx, python.New())
//	if err != nil {
//	    // startup failure: no bootstrap code has run
//	}
//	defer sess.Close()
//	res := sess.Boot(ctx, launcher.Bootstrap)
//
// [Launch] wraps that sequence and maps the [BootResult] to an exit status:
//
//   - entry point calls sys.exit(N): status N
//   - entry point returns without signaling: status 0
//   - unhandled interpreter failure: [ExitFailure], description on stderr
//   - interpreter cannot start: [ExitStartupFailure], bootstrap never runs
//
// Launch returns the status rather than exiting so it stays testable; the
// cmd/clipfix binary passes it straight to os.Exit.
package launcher
