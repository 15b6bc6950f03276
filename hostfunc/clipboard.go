package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoClipboard means no usable clipboard tool was found on PATH.
var ErrNoClipboard = errors.New("no clipboard tool available")

// Clipboard serves clipboard_read and clipboard_write calls by shelling
// out to the platform's clipboard tool. The original application used
// pyperclip for this; subprocesses don't exist inside WASI, so the
// capability moves to the host side.
type Clipboard struct {
	readCmd  []string
	writeCmd []string
}

// NewClipboard probes for a clipboard tool. On Linux it prefers Wayland's
// wl-clipboard when WAYLAND_DISPLAY is set, then falls back to xclip and
// xsel. Returns a Clipboard whose calls fail with ErrNoClipboard when no
// tool exists; registration stays unconditional.
func NewClipboard() *Clipboard {
	c := &Clipboard{}

	switch runtime.GOOS {
	case "darwin":
		c.readCmd = []string{"pbpaste"}
		c.writeCmd = []string{"pbcopy"}
	default:
		if os.Getenv("WAYLAND_DISPLAY") != "" && havePath("wl-paste") {
			c.readCmd = []string{"wl-paste", "--no-newline"}
			c.writeCmd = []string{"wl-copy"}
		} else if havePath("xclip") {
			c.readCmd = []string{"xclip", "-selection", "clipboard", "-o"}
			c.writeCmd = []string{"xclip", "-selection", "clipboard", "-i"}
		} else if havePath("xsel") {
			c.readCmd = []string{"xsel", "--clipboard", "--output"}
			c.writeCmd = []string{"xsel", "--clipboard", "--input"}
		}
	}

	return c
}

func havePath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// newClipboardCommands wires explicit commands, used by tests.
func newClipboardCommands(read, write []string) *Clipboard {
	return &Clipboard{readCmd: read, writeCmd: write}
}

func (c *Clipboard) Read(ctx context.Context, args map[string]any) (any, error) {
	if len(c.readCmd) == 0 {
		return nil, ErrNoClipboard
	}

	out, err := exec.CommandContext(ctx, c.readCmd[0], c.readCmd[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	return string(out), nil
}

func (c *Clipboard) Write(ctx context.Context, args map[string]any) (any, error) {
	if len(c.writeCmd) == 0 {
		return nil, ErrNoClipboard
	}

	text, ok := args["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text required")
	}

	cmd := exec.CommandContext(ctx, c.writeCmd[0], c.writeCmd[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("write clipboard: %w", err)
	}
	return nil, nil
}
