package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Library represents the entire music collection
type Library struct {
	Tracks      map[string]*api.Track `json:"tracks"`
	ScanPaths   []string              `json:"scan_paths"`
	LastScanned time.Time             `json:"last_scanned"`
	TotalTracks int                   `json:"total_tracks"`

	artistIndex index
	albumIndex  index

	mu      sync.RWMutex
	reg     *vfs.Registry
	scanner *Scanner
}

// index maps a tag value to the IDs of tracks carrying it
type index map[string][]string

func (ix index) add(key, id string) {
	if key != "" {
		ix[key] = append(ix[key], id)
	}
}

func (ix index) remove(key, id string) {
	ids := ix[key]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(ix, key)
		return
	}
	ix[key] = ids
}

func (ix index) keys() []string {
	keys := make([]string, 0, len(ix))
	for k := range ix {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewLibrary creates a new empty library reading files through reg
func NewLibrary(reg *vfs.Registry, workers int) *Library {
	return &Library{
		Tracks:      make(map[string]*api.Track),
		artistIndex: make(index),
		albumIndex:  make(index),
		reg:         reg,
		scanner:     NewScanner(reg, workers),
	}
}

// AddTrack adds a track to the library, replacing any track with the same ID
func (l *Library) AddTrack(track *api.Track) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.Tracks[track.ID]; ok {
		l.artistIndex.remove(old.Artist, old.ID)
		l.albumIndex.remove(old.Album, old.ID)
	}
	l.Tracks[track.ID] = track
	l.artistIndex.add(track.Artist, track.ID)
	l.albumIndex.add(track.Album, track.ID)
	l.TotalTracks = len(l.Tracks)
}

// GetTrack returns a track by ID
func (l *Library) GetTrack(id string) (*api.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	track, exists := l.Tracks[id]
	if !exists {
		return nil, playerrors.ErrTrackNotFound
	}
	return track, nil
}

// GetAllTracks returns all tracks sorted by artist, album and track number
func (l *Library) GetAllTracks() []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tracks := make([]*api.Track, 0, len(l.Tracks))
	for _, track := range l.Tracks {
		tracks = append(tracks, track)
	}

	sort.Slice(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		if a.Album != b.Album {
			return a.Album < b.Album
		}
		if a.TrackNum != b.TrackNum {
			return a.TrackNum < b.TrackNum
		}
		return a.FilePath < b.FilePath
	})

	return tracks
}

// GetTracksByArtist returns all tracks by a specific artist
func (l *Library) GetTracksByArtist(artist string) []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lookup(l.artistIndex[artist])
}

// GetTracksByAlbum returns all tracks from a specific album
func (l *Library) GetTracksByAlbum(album string) []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lookup(l.albumIndex[album])
}

func (l *Library) lookup(ids []string) []*api.Track {
	tracks := make([]*api.Track, 0, len(ids))
	for _, id := range ids {
		if track, ok := l.Tracks[id]; ok {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// GetArtists returns all unique artists
func (l *Library) GetArtists() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.artistIndex.keys()
}

// GetAlbums returns all unique albums
func (l *Library) GetAlbums() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.albumIndex.keys()
}

// Search matches query against title, artist and album; title matches
// sort first
func (l *Library) Search(query string) []*api.Track {
	query = strings.ToLower(query)
	var titleHits, otherHits []*api.Track

	for _, track := range l.GetAllTracks() {
		switch {
		case strings.Contains(strings.ToLower(track.Title), query):
			titleHits = append(titleHits, track)
		case strings.Contains(strings.ToLower(track.Artist), query),
			strings.Contains(strings.ToLower(track.Album), query):
			otherHits = append(otherHits, track)
		}
	}
	return append(titleHits, otherHits...)
}

// RemoveTrack removes a track from the library
func (l *Library) RemoveTrack(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	track, exists := l.Tracks[id]
	if !exists {
		return playerrors.ErrTrackNotFound
	}

	l.artistIndex.remove(track.Artist, id)
	l.albumIndex.remove(track.Album, id)
	delete(l.Tracks, id)
	l.TotalTracks = len(l.Tracks)
	return nil
}

// Scan scans the given directories and adds every readable track. Per-file
// failures do not stop the scan; they are joined into the returned error.
func (l *Library) Scan(ctx context.Context, paths []string) error {
	l.mu.Lock()
	l.ScanPaths = paths
	l.mu.Unlock()

	tracks, errs := l.scanner.Scan(ctx, paths)

	var scanErrs []error
	for tracks != nil || errs != nil {
		select {
		case track, ok := <-tracks:
			if !ok {
				tracks = nil
				continue
			}
			l.AddTrack(track)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			scanErrs = append(scanErrs, err)
		}
	}

	l.mu.Lock()
	l.LastScanned = time.Now()
	l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(scanErrs...)
}

// AddFile adds a single file or URI from any location to the library
func (l *Library) AddFile(uri string) (*api.Track, error) {
	track, err := l.scanner.ScanFile(uri)
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	l.AddTrack(track)
	return track, nil
}

// Resolve maps playlist entries onto library tracks. Entries the library
// does not know are scanned and added; entries that cannot be read are
// returned as given. It reports how many tracks were added.
func (l *Library) Resolve(entries []api.Track) ([]*api.Track, int) {
	tracks := make([]*api.Track, len(entries))
	added := 0
	for i := range entries {
		if known, err := l.GetTrack(entries[i].ID); err == nil {
			tracks[i] = known
			continue
		}
		track, err := l.AddFile(entries[i].FilePath)
		if err != nil {
			log.Debug().Err(err).Str("uri", entries[i].FilePath).Msg("playlist entry not scanned")
			entry := entries[i]
			tracks[i] = &entry
			continue
		}
		tracks[i] = track
		added++
	}
	return tracks, added
}

// Save writes the library as JSON to uri
func (l *Library) Save(uri string) error {
	l.mu.RLock()
	data, err := json.MarshalIndent(l, "", "  ")
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}

	f, err := l.reg.Open(uri, vfs.ModeWrite)
	if err != nil {
		return fmt.Errorf("open library file: %w", err)
	}
	if _, err := vfs.WriteString(f, string(data)); err != nil {
		f.Close()
		return fmt.Errorf("write library file: %w", err)
	}
	return f.Close()
}

// LoadLibrary loads a library from uri, or returns an empty one if the
// resource does not exist yet
func LoadLibrary(reg *vfs.Registry, uri string, workers int) (*Library, error) {
	lib := NewLibrary(reg, workers)

	data, err := reg.GetContents(uri)
	if errors.Is(err, vfs.ErrNotFound) {
		return lib, nil // First run
	}
	if err != nil {
		return nil, fmt.Errorf("read library file: %w", err)
	}

	if err := json.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("unmarshal library: %w", err)
	}

	lib.rebuildIndices()
	return lib, nil
}

// rebuildIndices rebuilds the secondary indices from the tracks map
func (l *Library) rebuildIndices() {
	l.artistIndex = make(index)
	l.albumIndex = make(index)
	if l.Tracks == nil {
		l.Tracks = make(map[string]*api.Track)
	}
	for _, track := range l.Tracks {
		l.artistIndex.add(track.Artist, track.ID)
		l.albumIndex.add(track.Album, track.ID)
	}
	l.TotalTracks = len(l.Tracks)
}
