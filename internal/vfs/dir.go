package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Remover is implemented by backends that can delete a resource.
type Remover interface {
	Remove(u *url.URL) error
}

// Lister is implemented by backends that can enumerate the non-directory
// entries directly below a location.
type Lister interface {
	List(u *url.URL) ([]string, error)
}

// Remove deletes the resource at uri. Backends without delete support
// fail with ErrNotSupported.
func (r *Registry) Remove(uri string) error {
	u, backend, err := r.resolve(uri)
	if err != nil {
		return err
	}
	rm, ok := backend.(Remover)
	if !ok {
		return fmt.Errorf("remove %s: %w", uri, ErrNotSupported)
	}
	if err := rm.Remove(u); err != nil {
		return fmt.Errorf("remove %s: %w", uri, err)
	}
	return nil
}

// List returns the URIs of the entries below uri, sorted by name.
func (r *Registry) List(uri string) ([]string, error) {
	u, backend, err := r.resolve(uri)
	if err != nil {
		return nil, err
	}
	ls, ok := backend.(Lister)
	if !ok {
		return nil, fmt.Errorf("list %s: %w", uri, ErrNotSupported)
	}
	names, err := ls.List(u)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", uri, err)
	}
	sort.Strings(names)

	uris := make([]string, len(names))
	for i, name := range names {
		uris[i] = Join(uri, name)
	}
	return uris, nil
}

// Join appends name to the location uri. Bare paths are joined as local
// paths; URIs get a path-escaped element.
func Join(uri, name string) string {
	if !strings.Contains(uri, "://") {
		return filepath.Join(uri, name)
	}
	return strings.TrimSuffix(uri, "/") + "/" + url.PathEscape(name)
}

func (r *Registry) resolve(uri string) (*url.URL, Backend, error) {
	u, err := parseURI(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("parse uri %s: %w", uri, err)
	}
	r.mu.RLock()
	backend, ok := r.backends[u.Scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownScheme, u.Scheme)
	}
	return u, backend, nil
}

func localPath(u *url.URL) string {
	if u.Host != "" && u.Host != "localhost" {
		return u.Host + u.Path
	}
	return u.Path
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// Remove implements Remover.
func (LocalBackend) Remove(u *url.URL) error {
	return notFound(os.Remove(localPath(u)))
}

// List implements Lister.
func (LocalBackend) List(u *url.URL) ([]string, error) {
	entries, err := os.ReadDir(localPath(u))
	if err != nil {
		return nil, notFound(err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Remove implements Remover.
func (b *MemoryBackend) Remove(u *url.URL) error {
	if !b.Delete(u.Host + u.Path) {
		return ErrNotFound
	}
	return nil
}

// List implements Lister. An empty location lists the top level.
func (b *MemoryBackend) List(u *url.URL) ([]string, error) {
	infos, err := afero.ReadDir(b.fs, memPath(u.Host+u.Path))
	if err != nil {
		return nil, notFound(err)
	}
	var names []string
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	return names, nil
}
