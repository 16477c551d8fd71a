package library

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
	"github.com/stretchr/testify/require"
)

// silentWAV builds a mono 16-bit PCM RIFF file of the given length.
func silentWAV(rate uint32, frames int) []byte {
	data := make([]byte, frames*2)

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(4+8+16+8+len(data)))
	out.WriteString("WAVEfmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, rate)
	binary.Write(&out, binary.LittleEndian, rate*2)
	binary.Write(&out, binary.LittleEndian, uint16(2))
	binary.Write(&out, binary.LittleEndian, uint16(16))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(len(data)))
	out.Write(data)
	return out.Bytes()
}

func memRegistry() (*vfs.Registry, *vfs.MemoryBackend) {
	mem := vfs.NewMemoryBackend()
	return vfs.NewRegistry(vfs.WithBackend("mem", mem)), mem
}

func TestMetadataReader_Read(t *testing.T) {
	reg, mem := memRegistry()
	mem.Put("music/Morning Song.wav", silentWAV(8000, 8000))

	track, err := NewMetadataReader(reg).Read("mem://music/Morning%20Song.wav")
	require.NoError(t, err)
	require.Equal(t, "Morning Song.wav", track.Title)
	require.Equal(t, "wav", track.Format)
	require.Equal(t, 8000, track.SampleRate)
	require.Equal(t, 1, track.Channels)
	require.Equal(t, time.Second, track.Duration)
	require.Equal(t, TrackID("mem://music/Morning%20Song.wav"), track.ID)
}

func TestMetadataReader_Missing(t *testing.T) {
	reg, _ := memRegistry()
	_, err := NewMetadataReader(reg).Read("mem://nothing.wav")
	require.ErrorIs(t, err, vfs.ErrNotFound)
}

// id3Cover builds an ID3v2.3 tag holding a single APIC frame.
func id3Cover(mime string, picture []byte) []byte {
	var frame bytes.Buffer
	frame.WriteByte(0) // ISO-8859-1
	frame.WriteString(mime)
	frame.WriteByte(0)
	frame.WriteByte(3) // front cover
	frame.WriteByte(0) // empty description
	frame.Write(picture)

	var frames bytes.Buffer
	frames.WriteString("APIC")
	binary.Write(&frames, binary.BigEndian, uint32(frame.Len()))
	binary.Write(&frames, binary.BigEndian, uint16(0))
	frames.Write(frame.Bytes())

	n := frames.Len()
	out := bytes.NewBufferString("ID3\x03\x00\x00")
	out.Write([]byte{byte(n >> 21 & 0x7f), byte(n >> 14 & 0x7f), byte(n >> 7 & 0x7f), byte(n & 0x7f)})
	out.Write(frames.Bytes())
	return out.Bytes()
}

func TestMetadataReader_ReadCoverArt(t *testing.T) {
	reg, mem := memRegistry()
	picture := []byte("not really a png")
	mem.Put("covered.mp3", id3Cover("image/png", picture))
	mem.Put("plain.wav", silentWAV(8000, 10))
	r := NewMetadataReader(reg)

	got, err := r.ReadCoverArt("mem://covered.mp3")
	require.NoError(t, err)
	require.Equal(t, picture, got)

	_, err = r.ReadCoverArt("mem://plain.wav")
	require.Error(t, err)

	_, err = r.ReadCoverArt("mem://missing.mp3")
	require.ErrorIs(t, err, vfs.ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/music/a/song.flac", "song.flac"},
		{"file:///music/b/track%201.mp3", "track 1.mp3"},
		{"http://example.com/stream/live.mp3", "live.mp3"},
		{"mem://single", "single"},
		{"relative.wav", "relative.wav"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, DisplayName(tt.in))
		})
	}
}

func TestScanner_Scan(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "album")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.wav"), silentWAV(8000, 800), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "two.wav"), silentWAV(8000, 1600), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("ignored"), 0o644))

	lib := NewLibrary(vfs.NewRegistry(), 2)
	require.NoError(t, lib.Scan(context.Background(), []string{dir}))

	tracks := lib.GetAllTracks()
	require.Len(t, tracks, 2)
	require.Equal(t, 2, lib.TotalTracks)
	require.False(t, lib.LastScanned.IsZero())

	titles := []string{tracks[0].Title, tracks[1].Title}
	require.ElementsMatch(t, []string{"one.wav", "two.wav"}, titles)
}

func TestScanner_MissingRoot(t *testing.T) {
	lib := NewLibrary(vfs.NewRegistry(), 1)
	err := lib.Scan(context.Background(), []string{filepath.Join(t.TempDir(), "absent")})

	var scanErr *playerrors.ScanError
	require.ErrorAs(t, err, &scanErr)
	require.Empty(t, lib.GetAllTracks())
}

func TestScanner_Canceled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.wav"), silentWAV(8000, 80), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lib := NewLibrary(vfs.NewRegistry(), 1)
	require.ErrorIs(t, lib.Scan(ctx, []string{dir}), context.Canceled)
}

func TestScanner_ScanFileUnsupported(t *testing.T) {
	reg, _ := memRegistry()
	_, err := NewScanner(reg, 1).ScanFile("mem://readme.txt")
	require.ErrorIs(t, err, playerrors.ErrInvalidFormat)
}

func TestLibrary_Indices(t *testing.T) {
	reg, _ := memRegistry()
	lib := NewLibrary(reg, 1)
	lib.AddTrack(&api.Track{ID: "a", Title: "Alpha", Artist: "X", Album: "One", TrackNum: 2})
	lib.AddTrack(&api.Track{ID: "b", Title: "Beta", Artist: "X", Album: "One", TrackNum: 1})
	lib.AddTrack(&api.Track{ID: "c", Title: "Gamma", Artist: "Y", Album: "Two"})

	require.Equal(t, []string{"X", "Y"}, lib.GetArtists())
	require.Equal(t, []string{"One", "Two"}, lib.GetAlbums())
	require.Len(t, lib.GetTracksByArtist("X"), 2)

	all := lib.GetAllTracks()
	require.Equal(t, []string{"b", "a", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	// Replacing a track moves it between index entries
	lib.AddTrack(&api.Track{ID: "c", Title: "Gamma", Artist: "X", Album: "One"})
	require.Equal(t, []string{"X"}, lib.GetArtists())
	require.Equal(t, 3, lib.TotalTracks)

	require.NoError(t, lib.RemoveTrack("a"))
	require.ErrorIs(t, lib.RemoveTrack("a"), playerrors.ErrTrackNotFound)
	_, err := lib.GetTrack("a")
	require.ErrorIs(t, err, playerrors.ErrTrackNotFound)
	require.Len(t, lib.GetTracksByAlbum("One"), 2)
}

func TestLibrary_Search(t *testing.T) {
	reg, _ := memRegistry()
	lib := NewLibrary(reg, 1)
	lib.AddTrack(&api.Track{ID: "1", Title: "Blue Monday", Artist: "New Order"})
	lib.AddTrack(&api.Track{ID: "2", Title: "Ceremony", Artist: "Blue Band"})
	lib.AddTrack(&api.Track{ID: "3", Title: "Other", Artist: "Nobody"})

	got := lib.Search("BLUE")
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "2", got[1].ID)
}

func TestLibrary_Resolve(t *testing.T) {
	require := require.New(t)
	reg, mem := memRegistry()
	mem.Put("new.wav", silentWAV(8000, 8000))

	lib := NewLibrary(reg, 1)
	known := &api.Track{ID: "a", Title: "Alpha", FilePath: "mem://a.wav"}
	lib.AddTrack(known)

	tracks, added := lib.Resolve([]api.Track{
		{ID: "a", Title: "from playlist", FilePath: "mem://a.wav"},
		{ID: TrackID("mem://new.wav"), FilePath: "mem://new.wav"},
		{ID: TrackID("mem://gone.wav"), Title: "Gone", FilePath: "mem://gone.wav"},
	})
	require.Len(tracks, 3)
	require.Equal(1, added)
	require.Same(known, tracks[0])
	require.Equal(time.Second, tracks[1].Duration)
	require.Equal("new.wav", tracks[1].Title)
	require.Equal("Gone", tracks[2].Title)
	require.Equal(2, lib.TotalTracks)

	_, err := lib.GetTrack(TrackID("mem://new.wav"))
	require.NoError(err)
}

func TestLibrary_SaveLoad(t *testing.T) {
	reg, mem := memRegistry()
	lib := NewLibrary(reg, 1)
	lib.AddTrack(&api.Track{ID: "a", Title: "Alpha", Artist: "X", Album: "One", FilePath: "/m/a.mp3"})
	require.NoError(t, lib.Save("mem://library.json"))

	_, ok := mem.Get("library.json")
	require.True(t, ok)

	loaded, err := LoadLibrary(reg, "mem://library.json", 1)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.TotalTracks)
	require.Equal(t, []string{"X"}, loaded.GetArtists())
	track, err := loaded.GetTrack("a")
	require.NoError(t, err)
	require.Equal(t, "/m/a.mp3", track.FilePath)
}

func TestLoadLibrary_FirstRun(t *testing.T) {
	reg, _ := memRegistry()
	lib, err := LoadLibrary(reg, "mem://missing.json", 1)
	require.NoError(t, err)
	require.Empty(t, lib.GetAllTracks())
}

func TestLoadLibrary_Corrupt(t *testing.T) {
	reg, mem := memRegistry()
	mem.Put("library.json", []byte("{not json"))
	_, err := LoadLibrary(reg, "mem://library.json", 1)
	require.Error(t, err)
}
