package playlist

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Extension of playlist files written by the manager
const Extension = ".m3u"

// Manager handles playlist CRUD operations with M3U persistence through
// a VFS registry
type Manager struct {
	reg          *vfs.Registry
	baseURI      string
	lineCapacity int
	playlists    map[string]*api.Playlist
	mu           sync.RWMutex
}

// NewManager creates a playlist manager storing files under baseURI
func NewManager(reg *vfs.Registry, baseURI string, lineCapacity int) *Manager {
	if lineCapacity < 2 {
		lineCapacity = 4096
	}
	return &Manager{
		reg:          reg,
		baseURI:      baseURI,
		lineCapacity: lineCapacity,
		playlists:    make(map[string]*api.Playlist),
	}
}

// Create creates a new playlist
func (m *Manager) Create(name, description string) (*api.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().Truncate(time.Second)

	playlist := &api.Playlist{
		ID:          id,
		Name:        name,
		Description: description,
		URI:         vfs.Join(m.baseURI, id+Extension),
		Tracks:      []api.Track{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.save(playlist); err != nil {
		return nil, err
	}
	m.playlists[id] = playlist
	return playlist, nil
}

// GetByID returns a playlist by its ID
func (m *Manager) GetByID(id string) (*api.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playlist, exists := m.playlists[id]
	if !exists {
		return nil, playerrors.ErrPlaylistNotFound
	}
	return playlist, nil
}

// GetAll returns all playlists ordered by name
func (m *Manager) GetAll() []*api.Playlist {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playlists := make([]*api.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		playlists = append(playlists, p)
	}
	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].Name != playlists[j].Name {
			return playlists[i].Name < playlists[j].Name
		}
		return playlists[i].ID < playlists[j].ID
	})
	return playlists
}

// Update updates a playlist's name and description
func (m *Manager) Update(id, name, description string) error {
	return m.modify(id, func(p *api.Playlist) error {
		p.Name = name
		p.Description = description
		return nil
	})
}

// Delete deletes a playlist and its file
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	playlist, exists := m.playlists[id]
	if !exists {
		return playerrors.ErrPlaylistNotFound
	}

	if err := m.reg.Remove(playlist.URI); err != nil && !errors.Is(err, vfs.ErrNotFound) {
		return fmt.Errorf("delete playlist file: %w", err)
	}

	delete(m.playlists, id)
	return nil
}

// AddTrack adds a track to a playlist
func (m *Manager) AddTrack(playlistID string, track *api.Track) error {
	return m.modify(playlistID, func(p *api.Playlist) error {
		p.Tracks = append(p.Tracks, *track)
		return nil
	})
}

// RemoveTrack removes the first occurrence of a track from a playlist
func (m *Manager) RemoveTrack(playlistID, trackID string) error {
	return m.modify(playlistID, func(p *api.Playlist) error {
		for i, t := range p.Tracks {
			if t.ID == trackID {
				p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
				return nil
			}
		}
		return playerrors.ErrTrackNotFound
	})
}

// modify applies fn to a copy of the playlist and keeps the change only
// once it has been written
func (m *Manager) modify(id string, fn func(*api.Playlist) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.playlists[id]
	if !exists {
		return playerrors.ErrPlaylistNotFound
	}

	next := *current
	next.Tracks = append([]api.Track(nil), current.Tracks...)
	if err := fn(&next); err != nil {
		return err
	}
	next.UpdatedAt = time.Now().Truncate(time.Second)

	if err := m.save(&next); err != nil {
		return err
	}
	*current = next
	return nil
}

// save writes a playlist to its URI
func (m *Manager) save(playlist *api.Playlist) (err error) {
	f, err := m.reg.Open(playlist.URI, vfs.ModeWrite)
	if err != nil {
		return fmt.Errorf("open playlist file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close playlist file: %w", cerr)
		}
	}()

	if err := WriteM3U(f, playlist); err != nil {
		return fmt.Errorf("write playlist file: %w", err)
	}
	return nil
}

// Load reads the playlist at uri and adds it to the manager
func (m *Manager) Load(uri string) (*api.Playlist, error) {
	f, err := m.reg.Open(uri, vfs.ModeRead)
	if err != nil {
		return nil, fmt.Errorf("open playlist file: %w", err)
	}
	defer f.Close()

	playlist, err := ReadM3U(f, uri, m.lineCapacity)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.playlists[playlist.ID] = playlist
	m.mu.Unlock()
	return playlist, nil
}

// LoadAll loads every playlist stored under the base URI. Files that
// cannot be parsed are skipped.
func (m *Manager) LoadAll() error {
	uris, err := m.reg.List(m.baseURI)
	if errors.Is(err, vfs.ErrNotFound) {
		return nil // Nothing saved yet
	}
	if err != nil {
		return fmt.Errorf("list playlists: %w", err)
	}

	for _, uri := range uris {
		if path.Ext(uri) != Extension {
			continue
		}
		if _, err := m.Load(uri); err != nil {
			log.Warn().Err(err).Str("uri", uri).Msg("skipping playlist")
		}
	}
	return nil
}
