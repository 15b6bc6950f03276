package launcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/clipfix/clipfix/hostfunc"
)

// Host-call framing on the interpreter's stderr stream. The shim writes
// "\x00CLIPFIX:{json}\x00"; responses go back as one JSON line on stdin.
// Everything outside a frame streams through to the real stderr.
const (
	frameStart = "\x00CLIPFIX:"
	frameEnd   = "\x00"
)

type callRequest struct {
	Fn   string         `json:"fn"`
	Args map[string]any `json:"args"`
}

type callResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type protocolHandler struct {
	ctx         context.Context
	registry    *hostfunc.Registry
	stdinWriter *io.PipeWriter
	out         io.Writer
	buf         bytes.Buffer
	mu          sync.Mutex
}

func newProtocolHandler(ctx context.Context, registry *hostfunc.Registry, stdinWriter *io.PipeWriter, out io.Writer) *protocolHandler {
	return &protocolHandler{
		ctx:         ctx,
		registry:    registry,
		stdinWriter: stdinWriter,
		out:         out,
	}
}

func (p *protocolHandler) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf.Write(data)

	for {
		content := p.buf.String()
		startIdx := strings.Index(content, frameStart)
		if startIdx == -1 {
			// Hold back a trailing partial marker so a frame start split
			// across two writes is not flushed as output.
			keep := partialMarker(content)
			if flush := content[:len(content)-keep]; flush != "" {
				io.WriteString(p.out, flush)
			}
			p.buf.Reset()
			p.buf.WriteString(content[len(content)-keep:])
			break
		}

		if startIdx > 0 {
			io.WriteString(p.out, content[:startIdx])
		}

		payload := content[startIdx+len(frameStart):]
		endIdx := strings.Index(payload, frameEnd)
		if endIdx == -1 {
			// Incomplete frame, keep it buffered for the next write.
			p.buf.Reset()
			p.buf.WriteString(content[startIdx:])
			break
		}

		p.buf.Reset()
		p.buf.WriteString(payload[endIdx+len(frameEnd):])

		var req callRequest
		if err := json.Unmarshal([]byte(payload[:endIdx]), &req); err != nil {
			p.respond(callResponse{Error: "invalid call format"})
			continue
		}

		p.respond(p.dispatch(req))
	}

	return len(data), nil
}

// partialMarker reports how many trailing bytes of s are a proper prefix
// of the frame start marker.
func partialMarker(s string) int {
	longest := len(frameStart) - 1
	if len(s) < longest {
		longest = len(s)
	}
	for n := longest; n > 0; n-- {
		if strings.HasPrefix(frameStart, s[len(s)-n:]) {
			return n
		}
	}
	return 0
}

func (p *protocolHandler) dispatch(req callRequest) callResponse {
	fn, ok := p.registry.Get(req.Fn)
	if !ok {
		return callResponse{Error: "unknown function: " + req.Fn}
	}

	result, err := fn(p.ctx, req.Args)
	if err != nil {
		return callResponse{Error: err.Error()}
	}
	return callResponse{Data: result}
}

// respond writes asynchronously: the interpreter blocks on its stdin read
// while this handler is still inside the stderr Write that carried the
// request.
func (p *protocolHandler) respond(resp callResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"error":"internal: failed to marshal response"}`)
	}
	go p.stdinWriter.Write(append(data, '\n'))
}
