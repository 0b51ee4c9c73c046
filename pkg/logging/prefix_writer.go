package logging

import (
	"bytes"
	"io"
)

// PrefixWriter decorates an io.Writer so that every complete line is
// prepended with a fixed prefix. Partial lines are held back until their
// newline arrives, which keeps interleaved writes from splitting the prefix
// mid-line.
type PrefixWriter struct {
	prefix  []byte
	dst     io.Writer
	partial []byte
}

// NewPrefixWriter creates a PrefixWriter around w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), dst: w}
}

// Write implements io.Writer. It reports the full input length as written
// once the data has been accepted, even when a trailing partial line is
// still buffered.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.partial = append(pw.partial, p...)

	for {
		idx := bytes.IndexByte(pw.partial, '\n')
		if idx < 0 {
			break
		}
		line := pw.partial[:idx+1]
		if _, err := pw.dst.Write(pw.prefix); err != nil {
			return 0, err
		}
		if _, err := pw.dst.Write(line); err != nil {
			return 0, err
		}
		pw.partial = pw.partial[idx+1:]
	}

	if len(pw.partial) == 0 {
		pw.partial = nil
	}
	return len(p), nil
}
