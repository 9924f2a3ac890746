package stdio

import (
	"bufio"
	"io"
)

// NewTextReader returns a reader that normalizes line endings to LF.
//
// It is useful for comparing the output of process streams across hosts:
//   - CRLF (\r\n) → LF (\n)  // Windows
//   - CR (\r) → LF (\n)      // Classic Mac OS
func NewTextReader(r io.Reader) io.Reader {
	return &crlfReader{br: bufio.NewReader(r)}
}

type crlfReader struct {
	br *bufio.Reader
	cr bool
}

func (c *crlfReader) Read(p []byte) (n int, err error) {
	var ch byte
	for n < len(p) {
		ch, err = c.br.ReadByte()
		if err != nil {
			if err == io.EOF && c.cr {
				p[n] = '\n'
				n++
				c.cr = false
			}
			break
		}
		if !c.cr {
			if ch == '\r' {
				c.cr = true
				continue
			}
			p[n] = ch
			n++
			continue
		}
		c.cr = false
		p[n] = '\n'
		n++
		if ch != '\n' {
			if err := c.br.UnreadByte(); err != nil {
				return n, err
			}
		}
	}
	if n > 0 && err == io.EOF {
		err = nil
	}
	return
}
