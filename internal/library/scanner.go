package library

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/audio"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
)

// Scanner scans directories concurrently using a worker pool
type Scanner struct {
	workers    int
	metaReader *MetadataReader
}

// NewScanner creates a new file scanner reading through reg
func NewScanner(reg *vfs.Registry, workers int) *Scanner {
	if workers <= 0 {
		workers = 4 // Default worker count
	}
	return &Scanner{
		workers:    workers,
		metaReader: NewMetadataReader(reg),
	}
}

// Scan walks local directories and reads every supported file on the
// worker pool. Both channels are closed once all workers finish.
func (s *Scanner) Scan(ctx context.Context, paths []string) (<-chan *api.Track, <-chan error) {
	tracks := make(chan *api.Track, 100)
	errs := make(chan error, 100)
	files := make(chan string, 100)

	var wg sync.WaitGroup

	report := func(path string, err error) {
		select {
		case errs <- &playerrors.ScanError{Path: path, Err: err}:
		case <-ctx.Done():
		}
	}

	// File discovery
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(files)
		for _, root := range paths {
			err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					report(p, err)
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if d.IsDir() || !audio.IsSupported(p) {
					return nil
				}
				select {
				case files <- p:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				report(root, err)
			}
		}
	}()

	// Worker pool
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for filePath := range files {
				track, err := s.metaReader.Read(filePath)
				if err != nil {
					report(filePath, err)
					continue
				}
				select {
				case tracks <- track:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(tracks)
		close(errs)
	}()

	return tracks, errs
}

// ScanFile reads a single file or URI and returns a Track
func (s *Scanner) ScanFile(uri string) (*api.Track, error) {
	if !audio.IsSupported(uri) {
		return nil, playerrors.ErrInvalidFormat
	}
	return s.metaReader.Read(uri)
}
