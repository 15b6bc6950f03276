package launcher

import (
	"context"
	"fmt"
)

// Bootstrap is the fixed unit of script code the launcher runs: import the
// application module and feed its entry point's return value into the
// interpreter's own termination primitive. Conversion of non-integer
// return values follows sys.exit's conventions (None means 0, anything
// else is printed to stderr and becomes status 1).
const Bootstrap = "import sys\nfrom clipfix.main import main\nsys.exit(main())\n"

// Launch boots the embedded interpreter, runs the bootstrap unit, tears
// the session down, and returns the process exit status. It is called at
// most once per process, before any other use of the embedded runtime.
func Launch(ctx context.Context, lang Language, opts ...Option) int {
	cfg := newConfig(opts)

	sess, err := newSession(ctx, lang, cfg)
	if err != nil {
		fmt.Fprintf(cfg.stderr, "clipfix: interpreter startup failed: %v\n", err)
		return ExitStartupFailure
	}
	defer sess.Close()

	res := sess.Boot(ctx, Bootstrap)
	reportFailure(cfg.stderr, res)
	return res.ExitStatus()
}
