package firmware

import (
	"bufio"
	"errors"
	"io"
)

var ErrLineTooLong = errors.New("line exceeds input buffer")

// LineReader splits a serial stream on '\n' into a fixed-size buffer.
// A line longer than the buffer is thrown away whole: Next skips to the next
// delimiter and reports ErrLineTooLong. Memory never grows with input.
type LineReader struct {
	r        *bufio.Reader
	buf      []byte
	overflow bool
}

func NewLineReader(r io.Reader, max int) *LineReader {
	if max <= 0 {
		max = 64
	}
	return &LineReader{
		r:   bufio.NewReader(r),
		buf: make([]byte, 0, max),
	}
}

// Next returns the next line without its delimiter. The slice is reused by
// the following call. An unterminated tail before EOF is returned as a line.
func (l *LineReader) Next() ([]byte, error) {
	l.buf = l.buf[:0]
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			if l.overflow {
				l.overflow = false
				return nil, ErrLineTooLong
			}
			if len(l.buf) > 0 && err == io.EOF {
				return l.buf, nil
			}
			return nil, err
		}
		if b == '\n' {
			if l.overflow {
				l.overflow = false
				return nil, ErrLineTooLong
			}
			return l.buf, nil
		}
		if l.overflow {
			continue
		}
		if len(l.buf) == cap(l.buf) {
			l.overflow = true
			l.buf = l.buf[:0]
			continue
		}
		l.buf = append(l.buf, b)
	}
}
