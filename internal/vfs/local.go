package vfs

import (
	"net/url"
	"os"
)

// LocalBackend serves the local filesystem.
type LocalBackend struct{}

// Open opens the path named by u. A host in a file URI other than
// "localhost" is treated as the first path element.
func (LocalBackend) Open(u *url.URL, mode Mode) (Stream, error) {
	flags, err := mode.osFlags()
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(localPath(u), flags, 0o644)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}
