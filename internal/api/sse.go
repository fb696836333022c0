package api

import (
	"bytes"
	"io"
	"sync"
)

var sseBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

var (
	sseDataPrefix  = []byte("data: ")
	sseErrorPrefix = []byte("event: error\ndata: ")
	sseSuffix      = []byte("\n\n")
	sseDone        = []byte("data: [DONE]\n\n")
)

// writeSSEData writes a standard SSE "data" frame.
func writeSSEData(w io.Writer, data []byte) {
	if w == nil || len(data) == 0 {
		return
	}
	writeSSEFrame(w, sseDataPrefix, data)
}

// writeSSEError writes an SSE error event.
func writeSSEError(w io.Writer, data []byte) {
	if w == nil || len(data) == 0 {
		return
	}
	writeSSEFrame(w, sseErrorPrefix, data)
}

// writeSSEDone writes the standard SSE done marker.
func writeSSEDone(w io.Writer) {
	if w == nil {
		return
	}
	_, _ = w.Write(sseDone)
}

func writeSSEFrame(w io.Writer, prefix, data []byte) {
	buf := sseBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	buf.Grow(len(prefix) + len(data) + len(sseSuffix))
	_, _ = buf.Write(prefix)
	_, _ = buf.Write(data)
	_, _ = buf.Write(sseSuffix)
	_, _ = w.Write(buf.Bytes())
	buf.Reset()
	sseBufferPool.Put(buf)
}
