package vfs

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultMaxContentsSize caps the size GetContents will allocate up front
// for a seekable resource.
const DefaultMaxContentsSize int64 = 1 << 30

// Backend opens streams for one URI scheme.
type Backend interface {
	Open(u *url.URL, mode Mode) (Stream, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(u *url.URL, mode Mode) (Stream, error)

// Open calls fn(u, mode).
func (fn BackendFunc) Open(u *url.URL, mode Mode) (Stream, error) {
	return fn(u, mode)
}

// Registry routes URIs to backends by scheme.
type Registry struct {
	mu          sync.RWMutex
	backends    map[string]Backend
	obs         Observer
	maxContents int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver attaches an I/O observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.obs = o
		}
	}
}

// WithBackend registers b for scheme.
func WithBackend(scheme string, b Backend) Option {
	return func(r *Registry) {
		r.backends[strings.ToLower(scheme)] = b
	}
}

// WithMaxContentsSize overrides DefaultMaxContentsSize. Values below 1
// keep the default.
func WithMaxContentsSize(n int64) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxContents = n
		}
	}
}

// NewRegistry creates a registry with the local file backend mounted
// under "file". Bare paths without a scheme are routed there too.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		backends:    map[string]Backend{"file": LocalBackend{}},
		obs:         nopObserver{},
		maxContents: DefaultMaxContentsSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegistry serves file, http and https URIs.
var DefaultRegistry = NewRegistry(
	WithBackend("http", NewHTTPBackend(nil)),
	WithBackend("https", NewHTTPBackend(nil)),
)

// Register mounts b under scheme, replacing any previous backend.
func (r *Registry) Register(scheme string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[strings.ToLower(scheme)] = b
}

// Schemes returns the registered schemes.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.backends))
	for s := range r.backends {
		schemes = append(schemes, s)
	}
	return schemes
}

// Open opens uri with the given fopen-style mode.
func (r *Registry) Open(uri string, mode Mode) (*File, error) {
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("open %s %q: %w", uri, mode, err)
	}

	u, err := parseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("parse uri %s: %w", uri, err)
	}

	r.mu.RLock()
	backend, ok := r.backends[u.Scheme]
	r.mu.RUnlock()
	if !ok {
		r.obs.Opened(u.Scheme, ErrUnknownScheme)
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, u.Scheme)
	}

	s, err := backend.Open(u, mode)
	r.obs.Opened(u.Scheme, err)
	if err != nil {
		log.Debug().Err(err).Str("uri", uri).Str("mode", string(mode)).Msg("vfs open failed")
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}

	log.Debug().Str("uri", uri).Str("mode", string(mode)).Msg("vfs open")
	return &File{uri: uri, scheme: u.Scheme, s: s, obs: r.obs}, nil
}

// parseURI treats anything without "://" as a local path.
func parseURI(uri string) (*url.URL, error) {
	if !strings.Contains(uri, "://") {
		return &url.URL{Scheme: "file", Path: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// Open opens uri on DefaultRegistry.
func Open(uri string, mode Mode) (*File, error) {
	return DefaultRegistry.Open(uri, mode)
}

// GetContents reads uri in full using DefaultRegistry.
func GetContents(uri string) ([]byte, error) {
	return DefaultRegistry.GetContents(uri)
}
