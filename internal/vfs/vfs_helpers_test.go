package vfs

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// pipeStream is a read-only, unseekable stream that hands out at most
// chunk bytes per Read.
type pipeStream struct {
	r      io.Reader
	chunk  int
	failAt int // fail with errPipe once this many bytes were read; 0 disables
	read   int
	closes *atomic.Int32
}

var errPipe = errors.New("pipe broke")

func (s *pipeStream) Read(p []byte) (int, error) {
	if s.failAt > 0 && s.read >= s.failAt {
		return 0, errPipe
	}
	if len(p) > s.chunk {
		p = p[:s.chunk]
	}
	n, err := s.r.Read(p)
	s.read += n
	return n, err
}

func (s *pipeStream) Write([]byte) (int, error)     { return 0, ErrReadOnly }
func (s *pipeStream) Seek(int64, int) (int64, error) { return 0, ErrNotSeekable }
func (s *pipeStream) Close() error {
	s.closes.Add(1)
	return nil
}

// pipeBackend serves data as an unseekable stream.
func pipeBackend(data []byte, chunk, failAt int, closes *atomic.Int32) Backend {
	return BackendFunc(func(u *url.URL, mode Mode) (Stream, error) {
		return &pipeStream{r: bytes.NewReader(data), chunk: chunk, failAt: failAt, closes: closes}, nil
	})
}

// shortStream reports a seekable size but returns at most limit bytes
// per Read.
type shortStream struct {
	*bytes.Reader
	limit  int
	closes *atomic.Int32
}

func (s *shortStream) Read(p []byte) (int, error) {
	if len(p) > s.limit {
		p = p[:s.limit]
	}
	return s.Reader.Read(p)
}

func (s *shortStream) Write([]byte) (int, error) { return 0, ErrReadOnly }
func (s *shortStream) Close() error {
	s.closes.Add(1)
	return nil
}

func newMemRegistry(t *testing.T) (*Registry, *MemoryBackend) {
	t.Helper()
	mem := NewMemoryBackend()
	return NewRegistry(WithBackend("mem", mem)), mem
}

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}

func mustOpen(t *testing.T, reg *Registry, uri string, mode Mode) *File {
	t.Helper()
	f, err := reg.Open(uri, mode)
	require.NoError(t, err)
	return f
}
