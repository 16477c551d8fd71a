package vfs

import (
	"io"
	"os"
	"strings"
)

// Stream is what a backend hands back from Open.
// Backends that cannot seek return ErrNotSeekable from Seek; read-only
// backends return ErrReadOnly from Write.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Mode is an fopen-style open mode such as "r", "rb", "w+" or "ab".
// The 'b' flag is accepted and ignored.
type Mode string

const (
	ModeRead      Mode = "rb"
	ModeWrite     Mode = "wb"
	ModeAppend    Mode = "ab"
	ModeReadWrite Mode = "r+b"
)

// base strips the binary flag, returning "" for malformed modes.
func (m Mode) base() string {
	s := string(m)
	if strings.Count(s, "b") > 1 {
		return ""
	}
	s = strings.Replace(s, "b", "", 1)
	switch s {
	case "r", "w", "a", "r+", "w+", "a+":
		return s
	}
	return ""
}

// Validate reports ErrInvalidMode for anything fopen would reject.
func (m Mode) Validate() error {
	if m.base() == "" {
		return ErrInvalidMode
	}
	return nil
}

// Readable reports whether the mode permits reading.
func (m Mode) Readable() bool {
	b := m.base()
	return b == "r" || strings.HasSuffix(b, "+")
}

// Writable reports whether the mode permits writing.
func (m Mode) Writable() bool {
	b := m.base()
	return b != "" && b != "r"
}

// Creates reports whether opening creates a missing resource.
func (m Mode) Creates() bool {
	b := m.base()
	return b != "" && b[0] != 'r'
}

// Truncates reports whether opening discards existing content.
func (m Mode) Truncates() bool {
	b := m.base()
	return b != "" && b[0] == 'w'
}

// Appends reports whether every write goes to the end of the resource.
func (m Mode) Appends() bool {
	b := m.base()
	return b != "" && b[0] == 'a'
}

// osFlags maps the mode onto os.OpenFile flags.
func (m Mode) osFlags() (int, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	var flags int
	switch {
	case m.Readable() && m.Writable():
		flags = os.O_RDWR
	case m.Writable():
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}
	if m.Creates() {
		flags |= os.O_CREATE
	}
	if m.Truncates() {
		flags |= os.O_TRUNC
	}
	if m.Appends() {
		flags |= os.O_APPEND
	}
	return flags, nil
}

// File is an open handle returned by Registry.Open. It is owned by the
// caller until Close; every call after Close fails with ErrClosed.
type File struct {
	uri    string
	scheme string
	s      Stream
	obs    Observer
	closed bool
}

// URI returns the URI the file was opened with.
func (f *File) URI() string { return f.uri }

// Scheme returns the backend scheme serving the file.
func (f *File) Scheme() string { return f.scheme }

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	n, err := f.s.Read(p)
	if n > 0 {
		f.obs.Read(f.scheme, n)
	}
	return n, err
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	n, err := f.s.Write(p)
	if n > 0 {
		f.obs.Wrote(f.scheme, n)
	}
	return n, err
}

// ReadByte reads a single byte. A read that yields nothing is reported
// as io.EOF.
func (f *File) ReadByte() (byte, error) {
	var b [1]byte
	n, err := f.Read(b[:])
	if n == 1 {
		return b[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// WriteByte writes a single byte.
func (f *File) WriteByte(c byte) error {
	_, err := WriteChar(f, c)
	return err
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, ErrClosed
	}
	return f.s.Seek(offset, whence)
}

// Tell returns the current cursor offset.
func (f *File) Tell() (int64, error) {
	return f.Seek(0, io.SeekCurrent)
}

// Close releases the backend stream.
func (f *File) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	err := f.s.Close()
	f.obs.Closed(f.scheme)
	return err
}
