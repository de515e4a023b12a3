package session

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
)

// capture accumulates the child's stdout while it runs. Marker waits read
// from it through since; every append wakes them by closing the current
// notify channel.
type capture struct {
	mu      sync.Mutex
	text    []byte
	lines   []string
	partial []byte
	notify  chan struct{}
	eof     bool
	sealed  bool
	cr      bool // last byte written was a CR
	logger  *slog.Logger
}

func newCapture(logger *slog.Logger) *capture {
	return &capture{
		notify: make(chan struct{}),
		logger: logger,
	}
}

// drain copies r into the capture until EOF or a read error.
func (c *capture) drain(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.write(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				c.logger.Debug("stdout read ended", "error", err)
			}
			c.close()
			return
		}
	}
}

func (c *capture) write(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return
	}
	p = c.normalize(p)
	if len(p) == 0 {
		return
	}

	c.text = append(c.text, p...)
	c.partial = append(c.partial, p...)
	for {
		i := bytes.IndexByte(c.partial, '\n')
		if i < 0 {
			break
		}
		line := string(c.partial[:i])
		c.partial = c.partial[i+1:]
		c.lines = append(c.lines, line)
		c.logger.Debug("output", "line", line)
	}
	c.wake()
}

// normalize turns CRLF and lone CR into a single LF. A CR at the end of
// one chunk swallows an LF at the start of the next. Must be called with
// mu held.
func (c *capture) normalize(p []byte) []byte {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		if c.cr {
			c.cr = false
			if b == '\n' {
				continue
			}
		}
		if b == '\r' {
			c.cr = true
			b = '\n'
		}
		out = append(out, b)
	}
	return out
}

func (c *capture) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eof {
		return
	}
	c.eof = true
	c.wake()
}

// wake must be called with mu held.
func (c *capture) wake() {
	close(c.notify)
	c.notify = make(chan struct{})
}

// mark returns the current end of the captured output.
func (c *capture) mark() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.text)
}

// since returns the output captured after offset, including any
// unterminated last line, together with a channel closed on the next
// change and whether the stream has ended.
func (c *capture) since(offset int) (string, <-chan struct{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if offset > len(c.text) {
		offset = len(c.text)
	}
	return string(c.text[offset:]), c.notify, c.eof
}

// seal stops accepting output and returns the final lines. A trailing
// unterminated line, such as a prompt, becomes the last line.
func (c *capture) seal() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sealed {
		c.sealed = true
		if len(c.partial) > 0 {
			c.lines = append(c.lines, string(c.partial))
			c.partial = nil
		}
	}
	return append([]string(nil), c.lines...)
}

// lockedBuffer collects the child's stderr.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
