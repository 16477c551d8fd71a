package vfs

import (
	"fmt"
	"io"
	"strings"
)

// WriteChar writes the single byte c to w. Anything short of a complete
// one-byte write is an error.
func WriteChar(w io.Writer, c byte) (byte, error) {
	n, err := w.Write([]byte{c})
	if n != 1 {
		if err == nil {
			err = io.ErrShortWrite
		}
		return 0, err
	}
	return c, nil
}

// ReadLine reads at most n-1 bytes from r, stopping after a newline
// (which is kept) or at end of stream. Bytes are consumed one at a time,
// so whatever follows a truncated line is left at the cursor.
//
// It returns io.EOF only when the stream ended before any byte was
// read; a final unterminated line is returned with a nil error. A
// capacity below 2 cannot hold a character and fails with
// ErrInvalidCapacity without touching r.
func ReadLine(r io.Reader, n int) (string, error) {
	if n < 2 {
		return "", ErrInvalidCapacity
	}

	next := byteReader(r)
	var sb strings.Builder
	for sb.Len() < n-1 {
		c, err := next()
		if err != nil {
			if sb.Len() == 0 {
				return "", err
			}
			if err == io.EOF {
				break
			}
			return sb.String(), err
		}
		sb.WriteByte(c)
		if c == '\n' {
			break
		}
	}
	return sb.String(), nil
}

// byteReader returns a function yielding one byte per call. Readers that
// return no data and no error are treated as exhausted.
func byteReader(r io.Reader) func() (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte
	}
	var b [1]byte
	return func() (byte, error) {
		n, err := r.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
}

// WriteString writes all of s to w. It returns len(s) on success and 0
// with an error otherwise; a partial write counts as failure.
func WriteString(w io.Writer, s string) (int, error) {
	n, err := io.WriteString(w, s)
	if n != len(s) {
		if err == nil {
			err = io.ErrShortWrite
		}
		return 0, fmt.Errorf("write %d of %d bytes: %w", n, len(s), err)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Printf formats according to format and writes the result with
// WriteString.
func Printf(w io.Writer, format string, args ...any) (int, error) {
	return WriteString(w, fmt.Sprintf(format, args...))
}
