package library

import (
	"crypto/md5"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/audio"
	"github.com/jscyril/musicvfs/internal/vfs"
	"github.com/rs/zerolog/log"
)

// MetadataReader extracts metadata from audio resources reachable
// through a VFS registry
type MetadataReader struct {
	reg *vfs.Registry
}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader(reg *vfs.Registry) *MetadataReader {
	return &MetadataReader{reg: reg}
}

// Read extracts metadata from the resource at uri and returns a Track
func (r *MetadataReader) Read(uri string) (*api.Track, error) {
	rs, err := r.reg.OpenSeekable(uri)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer rs.Close()

	track := &api.Track{
		ID:        TrackID(uri),
		Title:     DisplayName(uri),
		FilePath:  uri,
		CreatedAt: time.Now(),
	}

	// Tags are optional; untagged files keep the name-derived title
	if metadata, err := tag.ReadFrom(rs); err == nil {
		track.Title = getOrDefault(metadata.Title(), track.Title)
		track.Artist = getOrDefault(metadata.Artist(), "Unknown Artist")
		track.Album = getOrDefault(metadata.Album(), "Unknown Album")
		track.Genre = metadata.Genre()
		track.Year = metadata.Year()
		track.TrackNum, _ = metadata.Track()
	} else {
		log.Debug().Err(err).Str("uri", uri).Msg("no tags")
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}
	info, err := audio.ProbeStream(rs, uri)
	if err != nil {
		log.Debug().Err(err).Str("uri", uri).Msg("probe failed")
		return track, nil
	}
	track.Format = string(info.Format)
	track.Duration = info.Duration
	track.SampleRate = info.SampleRate
	track.Channels = info.Channels

	return track, nil
}

// ReadCoverArt extracts cover art from an audio resource
func (r *MetadataReader) ReadCoverArt(uri string) ([]byte, error) {
	rs, err := r.reg.OpenSeekable(uri)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer rs.Close()

	metadata, err := tag.ReadFrom(rs)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	if picture := metadata.Picture(); picture != nil {
		return picture.Data, nil
	}

	return nil, nil
}

// DisplayName returns the last path element of a path or URI.
func DisplayName(uri string) string {
	if strings.Contains(uri, "://") {
		if u, err := url.Parse(uri); err == nil {
			p := u.Path
			if p == "" || p == "/" {
				return u.Host
			}
			if name, err := url.PathUnescape(path.Base(p)); err == nil {
				return name
			}
			return path.Base(p)
		}
	}
	return filepath.Base(uri)
}

// TrackID derives the stable track ID for uri
func TrackID(uri string) string {
	hash := md5.Sum([]byte(uri))
	return fmt.Sprintf("track-%x", hash[:8])
}

// getOrDefault returns the value if non-empty, otherwise returns the default
func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
