package listener

import (
	"io"
)

// crlfReadWriter normalizes line endings for terminal style clients: reads
// turn \r\n and lone \r into \n, writes turn \n into \r\n. A \r\n pair split
// across two reads still yields a single \n.
type crlfReadWriter struct {
	rw io.ReadWriter

	// pendingCR is set when the previous read ended in a \r that was already
	// emitted as \n.
	pendingCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfReadWriter{rw: rw}
}

func (c *crlfReadWriter) Read(p []byte) (int, error) {
	for {
		n, err := c.rw.Read(p)
		out := 0
		for _, b := range p[:n] {
			switch {
			case b == '\n' && c.pendingCR:
				c.pendingCR = false
			case b == '\r':
				p[out] = '\n'
				out++
				c.pendingCR = true
			default:
				p[out] = b
				out++
				c.pendingCR = false
			}
		}
		// A read holding only the tail of a pair produces nothing; read again
		// rather than report an empty, error free read.
		if out > 0 || err != nil || n == 0 {
			return out, err
		}
	}
}

func (c *crlfReadWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	_, err := c.rw.Write(out)
	if err != nil {
		return 0, err
	}
	// Report the caller's length so bufio does not see a short write.
	return len(p), nil
}
