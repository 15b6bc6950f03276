package launcher

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/clipfix/clipfix/hostfunc"
)

func newTestProtocol(t *testing.T, registry *hostfunc.Registry) (*protocolHandler, *bufio.Reader, *bytes.Buffer) {
	t.Helper()
	stdinReader, stdinWriter := io.Pipe()
	t.Cleanup(func() { stdinReader.Close(); stdinWriter.Close() })

	var stderr bytes.Buffer
	p := newProtocolHandler(context.Background(), registry, stdinWriter, &stderr)
	return p, bufio.NewReader(stdinReader), &stderr
}

func TestProtocolDispatchesCall(t *testing.T) {
	registry := hostfunc.NewRegistry()
	registry.Register("echo", func(ctx context.Context, args map[string]any) (any, error) {
		return args["msg"], nil
	})

	p, responses, stderr := newTestProtocol(t, registry)

	p.Write([]byte("\x00CLIPFIX:{\"fn\":\"echo\",\"args\":{\"msg\":\"hello\"}}\x00"))

	line, err := responses.ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var resp callResponse
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "" || resp.Data != "hello" {
		t.Errorf("expected echoed data, got %+v", resp)
	}
	if stderr.Len() != 0 {
		t.Errorf("frame leaked to stderr: %q", stderr.String())
	}
}

func TestProtocolUnknownFunction(t *testing.T) {
	p, responses, _ := newTestProtocol(t, hostfunc.NewRegistry())

	p.Write([]byte("\x00CLIPFIX:{\"fn\":\"nope\",\"args\":{}}\x00"))

	line, err := responses.ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if !strings.Contains(line, "unknown function: nope") {
		t.Errorf("expected unknown-function error, got %q", line)
	}
}

func TestProtocolStreamsNonFrameData(t *testing.T) {
	p, _, stderr := newTestProtocol(t, hostfunc.NewRegistry())

	p.Write([]byte("Traceback (most recent call last):\n"))
	p.Write([]byte("ValueError: bad input\n"))

	if got := stderr.String(); !strings.Contains(got, "bad input") {
		t.Errorf("expected passthrough to stderr, got %q", got)
	}
}

func TestProtocolHandlesFrameSplitAcrossWrites(t *testing.T) {
	registry := hostfunc.NewRegistry()
	registry.Register("ping", func(ctx context.Context, args map[string]any) (any, error) {
		return "pong", nil
	})

	p, responses, stderr := newTestProtocol(t, registry)

	frame := "\x00CLIPFIX:{\"fn\":\"ping\",\"args\":{}}\x00"
	p.Write([]byte("before "))
	p.Write([]byte(frame[:10]))
	p.Write([]byte(frame[10:]))
	p.Write([]byte(" after"))

	line, err := responses.ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if !strings.Contains(line, "pong") {
		t.Errorf("expected pong response, got %q", line)
	}
	if got := stderr.String(); !strings.Contains(got, "before ") || !strings.Contains(got, " after") {
		t.Errorf("expected surrounding bytes on stderr, got %q", got)
	}
}

func TestProtocolHoldsPartialMarkerAcrossWrites(t *testing.T) {
	registry := hostfunc.NewRegistry()
	registry.Register("ping", func(ctx context.Context, args map[string]any) (any, error) {
		return "pong", nil
	})

	p, responses, stderr := newTestProtocol(t, registry)

	frame := "\x00CLIPFIX:{\"fn\":\"ping\",\"args\":{}}\x00"
	p.Write([]byte("before " + frame[:5])) // cuts the marker mid-way
	if got := stderr.String(); got != "before " {
		t.Fatalf("partial marker leaked to stderr: %q", got)
	}
	p.Write([]byte(frame[5:]))

	line, err := responses.ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if !strings.Contains(line, "pong") {
		t.Errorf("expected pong response, got %q", line)
	}
	if got := stderr.String(); got != "before " {
		t.Errorf("expected only surrounding bytes on stderr, got %q", got)
	}
}

func TestProtocolInvalidJSON(t *testing.T) {
	p, responses, _ := newTestProtocol(t, hostfunc.NewRegistry())

	p.Write([]byte("\x00CLIPFIX:not json\x00"))

	line, err := responses.ReadString('\n')
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if !strings.Contains(line, "invalid call format") {
		t.Errorf("expected invalid-format error, got %q", line)
	}
}
