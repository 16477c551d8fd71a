package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/library"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
)

// Extended M3U directives
const (
	m3uHeader      = "#EXTM3U"
	m3uInfo        = "#EXTINF:"
	m3uName        = "#PLAYLIST:"
	m3uID          = "#X-ID:"
	m3uDescription = "#X-DESCRIPTION:"
	m3uCreated     = "#X-CREATED:"
	m3uUpdated     = "#X-UPDATED:"
)

// WriteM3U writes p to w as an extended M3U playlist.
func WriteM3U(w io.Writer, p *api.Playlist) error {
	bw := bufio.NewWriter(w)

	if _, err := vfs.WriteString(bw, m3uHeader+"\n"); err != nil {
		return err
	}
	if _, err := vfs.Printf(bw, "%s%s\n%s%s\n", m3uName, oneLine(p.Name), m3uID, p.ID); err != nil {
		return err
	}
	if p.Description != "" {
		if _, err := vfs.Printf(bw, "%s%s\n", m3uDescription, oneLine(p.Description)); err != nil {
			return err
		}
	}
	if _, err := vfs.Printf(bw, "%s%s\n%s%s\n",
		m3uCreated, p.CreatedAt.Format(time.RFC3339),
		m3uUpdated, p.UpdatedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	for _, t := range p.Tracks {
		secs := -1
		if t.Duration > 0 {
			secs = int(t.Duration.Round(time.Second) / time.Second)
		}
		if _, err := vfs.Printf(bw, "%s%d,%s\n%s\n", m3uInfo, secs, oneLine(displayTitle(t)), t.FilePath); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadM3U parses an M3U or extended M3U playlist read from r. uri names
// the playlist in errors and anchors relative entries. Lines are read
// with lineCapacity and reassembled when they do not fit.
func ReadM3U(r io.Reader, uri string, lineCapacity int) (*api.Playlist, error) {
	br := bufio.NewReader(r)
	p := &api.Playlist{URI: uri, Tracks: []api.Track{}}

	var (
		pending *api.Track
		lineNo  int
	)
	for {
		line, err := readFullLine(br, lineCapacity)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read playlist %s: %w", uri, err)
		}
		lineNo++
		line = strings.TrimRight(line, "\r\n")
		line = strings.TrimPrefix(line, "\ufeff")

		switch {
		case strings.TrimSpace(line) == "", line == m3uHeader:
		case strings.HasPrefix(line, m3uInfo):
			t, err := parseInfo(strings.TrimPrefix(line, m3uInfo))
			if err != nil {
				return nil, &playerrors.PlaylistLineError{URI: uri, Line: lineNo, Err: err}
			}
			pending = t
		case strings.HasPrefix(line, m3uName):
			p.Name = strings.TrimPrefix(line, m3uName)
		case strings.HasPrefix(line, m3uID):
			p.ID = strings.TrimPrefix(line, m3uID)
		case strings.HasPrefix(line, m3uDescription):
			p.Description = strings.TrimPrefix(line, m3uDescription)
		case strings.HasPrefix(line, m3uCreated):
			if p.CreatedAt, err = parseTime(line, m3uCreated); err != nil {
				return nil, &playerrors.PlaylistLineError{URI: uri, Line: lineNo, Err: err}
			}
		case strings.HasPrefix(line, m3uUpdated):
			if p.UpdatedAt, err = parseTime(line, m3uUpdated); err != nil {
				return nil, &playerrors.PlaylistLineError{URI: uri, Line: lineNo, Err: err}
			}
		case strings.HasPrefix(line, "#"):
			// Unknown directive or comment
		default:
			t := pending
			if t == nil {
				t = &api.Track{}
			}
			pending = nil

			t.FilePath = resolveEntry(uri, strings.TrimSpace(line))
			t.ID = library.TrackID(t.FilePath)
			if t.Title == "" {
				t.Title = library.DisplayName(t.FilePath)
			}
			p.Tracks = append(p.Tracks, *t)
		}
	}

	if p.ID == "" {
		p.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(uri)).String()
	}
	if p.Name == "" {
		base := library.DisplayName(uri)
		p.Name = strings.TrimSuffix(base, path.Ext(base))
	}
	return p, nil
}

// readFullLine joins the fragments vfs.ReadLine returns for a line
// longer than capacity.
func readFullLine(r io.Reader, capacity int) (string, error) {
	var sb strings.Builder
	for {
		part, err := vfs.ReadLine(r, capacity)
		sb.WriteString(part)
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return sb.String(), err
		}
		if strings.HasSuffix(part, "\n") || len(part) < capacity-1 {
			return sb.String(), nil
		}
	}
}

func parseInfo(s string) (*api.Track, error) {
	secs, title, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("%w: EXTINF without title separator", playerrors.ErrInvalidFormat)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(secs), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: EXTINF duration %q", playerrors.ErrInvalidFormat, secs)
	}

	t := &api.Track{}
	if n > 0 {
		t.Duration = time.Duration(n * float64(time.Second))
	}
	if artist, name, ok := strings.Cut(title, " - "); ok {
		t.Artist, t.Title = artist, name
	} else {
		t.Title = title
	}
	return t, nil
}

func parseTime(line, prefix string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, prefix))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", playerrors.ErrInvalidFormat, err)
	}
	return ts, nil
}

// resolveEntry anchors a relative entry at the playlist's location.
func resolveEntry(playlistURI, entry string) string {
	if strings.Contains(entry, "://") || filepath.IsAbs(entry) {
		return entry
	}
	if !strings.Contains(playlistURI, "://") {
		return filepath.Join(filepath.Dir(playlistURI), filepath.FromSlash(entry))
	}
	base, err := url.Parse(playlistURI)
	if err != nil {
		return entry
	}
	ref, err := url.Parse(entry)
	if err != nil {
		return entry
	}
	return base.ResolveReference(ref).String()
}

func displayTitle(t api.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
