package supervisor

import (
	"bytes"
	"log/slog"
	"strings"
)

// streamWriter tees subprocess output: complete lines go to the logger as
// they arrive, and up to maxCapturedOutput bytes are retained for failure
// reports.
type streamWriter struct {
	logger  *slog.Logger
	stream  string
	capture *bytes.Buffer
	pending []byte
}

func newStreamWriter(logger *slog.Logger, stream string, capture *bytes.Buffer) *streamWriter {
	return &streamWriter{logger: logger, stream: stream, capture: capture}
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if remaining := maxCapturedOutput - w.capture.Len(); remaining > 0 {
		if len(p) <= remaining {
			w.capture.Write(p)
		} else {
			w.capture.Write(p[:remaining])
		}
	}

	w.pending = append(w.pending, p...)
	for {
		idx := bytes.IndexByte(w.pending, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(w.pending[:idx]), "\r")
		w.pending = w.pending[idx+1:]
		if line != "" {
			w.logger.Debug("Subprocess output.", "stream", w.stream, "line", line)
		}
	}
	return len(p), nil
}
