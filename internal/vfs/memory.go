package vfs

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// MemoryBackend keeps named objects in an in-memory filesystem,
// addressed as mem://name. Names are slash-separated paths; parent
// directories are created on demand.
type MemoryBackend struct {
	fs afero.Fs
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{fs: afero.NewMemMapFs()}
}

// memPath maps an object name onto its absolute path in the filesystem.
func memPath(name string) string {
	return path.Join("/", name)
}

// Put stores a copy of data under name.
func (b *MemoryBackend) Put(name string, data []byte) {
	p := memPath(name)
	if err := b.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		panic(fmt.Sprintf("vfs: mem put %s: %v", name, err))
	}
	if err := afero.WriteFile(b.fs, p, data, 0o644); err != nil {
		panic(fmt.Sprintf("vfs: mem put %s: %v", name, err))
	}
}

// Get returns a copy of the object stored under name.
func (b *MemoryBackend) Get(name string) ([]byte, bool) {
	p := memPath(name)
	if info, err := b.fs.Stat(p); err != nil || info.IsDir() {
		return nil, false
	}
	data, err := afero.ReadFile(b.fs, p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Delete removes name. It reports whether the object existed.
func (b *MemoryBackend) Delete(name string) bool {
	p := memPath(name)
	if info, err := b.fs.Stat(p); err != nil || info.IsDir() {
		return false
	}
	return b.fs.Remove(p) == nil
}

// Names lists stored objects in sorted order.
func (b *MemoryBackend) Names() []string {
	var names []string
	afero.Walk(b.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			names = append(names, strings.TrimPrefix(p, "/"))
		}
		return nil
	})
	sort.Strings(names)
	return names
}

// Open implements Backend.
func (b *MemoryBackend) Open(u *url.URL, mode Mode) (Stream, error) {
	flags, err := mode.osFlags()
	if err != nil {
		return nil, err
	}
	p := memPath(u.Host + u.Path)

	if info, err := b.fs.Stat(p); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, p)
	}
	if mode.Creates() {
		if err := b.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
			return nil, err
		}
	}

	f, err := b.fs.OpenFile(p, flags, 0o644)
	if err != nil {
		return nil, notFound(err)
	}
	return &memStream{
		f:        f,
		readable: mode.Readable(),
		writable: mode.Writable(),
		append:   mode.Appends(),
	}, nil
}

// memStream enforces the open mode on top of an afero file, which
// allows reads through write-only handles and positioned appends.
type memStream struct {
	f        afero.File
	readable bool
	writable bool
	append   bool
}

func (s *memStream) Read(p []byte) (int, error) {
	if !s.readable {
		return 0, ErrWriteOnly
	}
	return s.f.Read(p)
}

func (s *memStream) Write(p []byte) (int, error) {
	if !s.writable {
		return 0, ErrReadOnly
	}
	if s.append {
		if _, err := s.f.Seek(0, io.SeekEnd); err != nil {
			return 0, err
		}
	}
	return s.f.Write(p)
}

func (s *memStream) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart && whence != io.SeekCurrent && whence != io.SeekEnd {
		return 0, errors.New("vfs: invalid whence")
	}
	prev, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	abs, err := s.f.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	if abs < 0 {
		s.f.Seek(prev, io.SeekStart)
		return 0, errors.New("vfs: negative position")
	}
	return abs, nil
}

func (s *memStream) Close() error {
	return s.f.Close()
}
