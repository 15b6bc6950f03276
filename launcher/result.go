package launcher

import (
	"errors"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero/sys"
)

// Exit statuses reserved by the launcher. Statuses chosen by the embedded
// program pass through untouched, so collisions with these values are
// possible; the taxonomy is distinguished by diagnostic text, not code.
const (
	// ExitFailure is returned when the bootstrap unit fails without
	// signaling an explicit status: a wasm trap, a module the interpreter
	// could not import, or any other error crossing the runtime boundary.
	ExitFailure = 1

	// ExitStartupFailure is returned when the embedded runtime itself
	// cannot be constructed. No bootstrap code has run in that case.
	ExitStartupFailure = 2
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrAlreadyBooted = errors.New("session already booted")
)

// BootResult is the outcome of running the bootstrap unit: an explicit
// integer status from the interpreter's termination primitive, no status
// at all (the program ran off the end), or an unhandled failure.
type BootResult struct {
	Status   int
	Explicit bool  // termination primitive was invoked
	Err      error // unhandled failure; mutually exclusive with Explicit
}

// ExitStatus maps the result to a host process exit status. Truncation to
// the platform's native exit-status width happens in os.Exit.
func (r BootResult) ExitStatus() int {
	if r.Err != nil {
		return ExitFailure
	}
	return r.Status
}

// resultFromRun classifies the error returned by module instantiation.
// WASI's proc_exit surfaces as *sys.ExitError for any code, zero included;
// a nil error means _start returned without signaling.
func resultFromRun(err error) BootResult {
	if err == nil {
		return BootResult{}
	}
	var exit *sys.ExitError
	if errors.As(err, &exit) {
		return BootResult{Status: int(exit.ExitCode()), Explicit: true}
	}
	return BootResult{Err: err}
}

func reportFailure(w io.Writer, r BootResult) {
	if r.Err != nil {
		fmt.Fprintf(w, "clipfix: unhandled interpreter failure: %v\n", r.Err)
	}
}
