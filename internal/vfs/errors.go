package vfs

import (
	"errors"
	"fmt"
)

var (
	ErrClosed          = errors.New("vfs: file already closed")
	ErrNotSeekable     = errors.New("vfs: stream does not support seeking")
	ErrReadOnly        = errors.New("vfs: stream is read-only")
	ErrWriteOnly       = errors.New("vfs: stream is write-only")
	ErrInvalidMode     = errors.New("vfs: invalid open mode")
	ErrUnknownScheme   = errors.New("vfs: no backend registered for scheme")
	ErrNotFound        = errors.New("vfs: resource not found")
	ErrInvalidCapacity = errors.New("vfs: line capacity must be at least 2")
	ErrShortRead       = errors.New("vfs: short read")
	ErrReadFailed      = errors.New("vfs: read failed")
	ErrTooLarge        = errors.New("vfs: resource too large to buffer")
	ErrNotSupported    = errors.New("vfs: operation not supported by backend")
)

// HTTPStatusError reports a non-2xx response from the HTTP backend.
type HTTPStatusError struct {
	URI        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("vfs: GET %s: unexpected status %d", e.URI, e.StatusCode)
}

// Is lets a 404 match ErrNotFound.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
