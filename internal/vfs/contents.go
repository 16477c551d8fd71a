package vfs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// GetContents reads the whole resource at uri into a new slice the
// caller owns.
//
// When the backend can seek, the size is taken from the end offset and
// the data is fetched with a single Read into an exactly sized slice; if
// that read comes up short the bytes obtained are returned together with
// an error wrapping ErrShortRead. Otherwise the stream is drained into a
// Buffer that starts at GrowStep bytes and grows by GrowStep. A failed
// read during draining returns the bytes collected so far with an error
// wrapping ErrReadFailed. The handle is closed on every path.
func (r *Registry) GetContents(uri string) (data []byte, err error) {
	f, err := r.Open(uri, ModeRead)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", uri, cerr)
		}
	}()

	if size, serr := f.Seek(0, io.SeekEnd); serr == nil {
		return r.readSized(f, size)
	}

	log.Debug().Str("uri", uri).Msg("vfs backend not seekable, buffering incrementally")
	buf := NewBuffer(GrowStep)
	if _, err := buf.ReadFrom(f); err != nil {
		return buf.Detach(), fmt.Errorf("read %s: %w", uri, err)
	}
	return buf.Detach(), nil
}

func (r *Registry) readSized(f *File, size int64) ([]byte, error) {
	if size < 0 || size > r.maxContents {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, f.URI(), size)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", f.URI(), err)
	}

	data := make([]byte, size)
	if size == 0 {
		return data, nil
	}
	n, err := f.Read(data)
	if int64(n) < size {
		if err != nil && err != io.EOF {
			return data[:n], fmt.Errorf("read %s: got %d of %d bytes: %w: %w", f.URI(), n, size, ErrShortRead, err)
		}
		return data[:n], fmt.Errorf("read %s: got %d of %d bytes: %w", f.URI(), n, size, ErrShortRead)
	}
	return data, nil
}

// OpenSeekable opens uri for reading and guarantees a seekable result.
// Backends that cannot seek are drained with GetContents and served from
// memory.
func (r *Registry) OpenSeekable(uri string) (io.ReadSeekCloser, error) {
	f, err := r.Open(uri, ModeRead)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekCurrent); err == nil {
		return f, nil
	}
	f.Close()

	data, err := r.GetContents(uri)
	if err != nil {
		return nil, err
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
