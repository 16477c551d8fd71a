package playlist

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/library"
	"github.com/jscyril/musicvfs/internal/vfs"
	playerrors "github.com/jscyril/musicvfs/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, lineCapacity int) (*Manager, *vfs.Registry, *vfs.MemoryBackend) {
	t.Helper()
	mem := vfs.NewMemoryBackend()
	reg := vfs.NewRegistry(vfs.WithBackend("mem", mem))
	return NewManager(reg, "mem://playlists", lineCapacity), reg, mem
}

func TestManager_SaveAndLoadAll(t *testing.T) {
	m, reg, mem := newManager(t, 4096)

	p, err := m.Create("Road Trip", "long drives")
	require.NoError(t, err)
	require.Equal(t, "mem://playlists/"+p.ID+".m3u", p.URI)

	require.NoError(t, m.AddTrack(p.ID, &api.Track{
		ID: "x", Title: "Highway", Artist: "The Band", Duration: 205 * time.Second, FilePath: "/music/highway.mp3",
	}))
	require.NoError(t, m.AddTrack(p.ID, &api.Track{
		ID: "y", Title: "Untitled", FilePath: "http://radio.example/live.mp3",
	}))

	raw, ok := mem.Get("playlists/" + p.ID + ".m3u")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(string(raw), "#EXTM3U\n#PLAYLIST:Road Trip\n"))
	require.Contains(t, string(raw), "#EXTINF:205,The Band - Highway\n/music/highway.mp3\n")
	require.Contains(t, string(raw), "#EXTINF:-1,Untitled\nhttp://radio.example/live.mp3\n")

	fresh := NewManager(reg, "mem://playlists", 4096)
	require.NoError(t, fresh.LoadAll())

	got, err := fresh.GetByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, "Road Trip", got.Name)
	require.Equal(t, "long drives", got.Description)
	require.True(t, p.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Tracks, 2)

	first := got.Tracks[0]
	require.Equal(t, library.TrackID("/music/highway.mp3"), first.ID)
	require.Equal(t, "Highway", first.Title)
	require.Equal(t, "The Band", first.Artist)
	require.Equal(t, 205*time.Second, first.Duration)
	require.Equal(t, "/music/highway.mp3", first.FilePath)

	second := got.Tracks[1]
	require.Equal(t, "Untitled", second.Title)
	require.Empty(t, second.Artist)
	require.Zero(t, second.Duration)
}

func TestManager_UpdateDelete(t *testing.T) {
	m, _, mem := newManager(t, 4096)

	p, err := m.Create("a", "")
	require.NoError(t, err)
	require.NoError(t, m.Update(p.ID, "b", "desc"))

	got, err := m.GetByID(p.ID)
	require.NoError(t, err)
	require.Equal(t, "b", got.Name)

	require.ErrorIs(t, m.RemoveTrack(p.ID, "missing"), playerrors.ErrTrackNotFound)
	require.ErrorIs(t, m.Update("nope", "x", ""), playerrors.ErrPlaylistNotFound)

	require.NoError(t, m.Delete(p.ID))
	require.Empty(t, mem.Names())
	require.Empty(t, m.GetAll())
	require.ErrorIs(t, m.Delete(p.ID), playerrors.ErrPlaylistNotFound)
}

func TestManager_CreateFailureNotStored(t *testing.T) {
	m := NewManager(vfs.NewRegistry(), "nope://playlists", 0)
	_, err := m.Create("a", "")
	require.ErrorIs(t, err, vfs.ErrUnknownScheme)
	require.Empty(t, m.GetAll())
}

func TestManager_LoadAllMissingDir(t *testing.T) {
	m := NewManager(vfs.NewRegistry(), filepath.Join(t.TempDir(), "absent"), 0)
	require.NoError(t, m.LoadAll())
	require.Empty(t, m.GetAll())
}

func TestManager_LoadAllSkipsBadFiles(t *testing.T) {
	m, _, mem := newManager(t, 4096)
	mem.Put("playlists/good.m3u", []byte("#EXTM3U\n/music/a.mp3\n"))
	mem.Put("playlists/bad.m3u", []byte("#EXTINF:abc,Broken\n/music/b.mp3\n"))
	mem.Put("playlists/notes.txt", []byte("ignored"))

	require.NoError(t, m.LoadAll())
	all := m.GetAll()
	require.Len(t, all, 1)
	require.Equal(t, "good", all[0].Name)
}

func TestReadM3U_ReassemblesLongLines(t *testing.T) {
	long := "/music/" + strings.Repeat("very-long-directory/", 20) + "song.flac"
	src := "#EXTM3U\n#EXTINF:61,Some Artist - A Title That Is Long\n" + long + "\n"

	for _, capacity := range []int{2, 3, 8, 64, 4096} {
		p, err := ReadM3U(strings.NewReader(src), "mem://x.m3u", capacity)
		require.NoError(t, err, "capacity %d", capacity)
		require.Len(t, p.Tracks, 1)
		require.Equal(t, long, p.Tracks[0].FilePath)
		require.Equal(t, "A Title That Is Long", p.Tracks[0].Title)
		require.Equal(t, 61*time.Second, p.Tracks[0].Duration)
	}
}

func TestReadM3U_PlainAndRelative(t *testing.T) {
	src := "song one.mp3\r\n# comment\r\n\r\nsub/two.flac"

	p, err := ReadM3U(strings.NewReader(src), "mem://lists/mix.m3u", 4096)
	require.NoError(t, err)
	require.Equal(t, "mix", p.Name)
	require.NotEmpty(t, p.ID)
	require.Len(t, p.Tracks, 2)
	require.Equal(t, "mem://lists/song%20one.mp3", p.Tracks[0].FilePath)
	require.Equal(t, "song one.mp3", p.Tracks[0].Title)
	require.Equal(t, "mem://lists/sub/two.flac", p.Tracks[1].FilePath)

	local := filepath.Join("data", "lists", "mix.m3u")
	p, err = ReadM3U(strings.NewReader("a.mp3\n/abs/b.mp3\n"), local, 4096)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("data", "lists", "a.mp3"), p.Tracks[0].FilePath)
	require.Equal(t, "/abs/b.mp3", p.Tracks[1].FilePath)

	again, err := ReadM3U(strings.NewReader("a.mp3\n"), local, 4096)
	require.NoError(t, err)
	require.Equal(t, p.ID, again.ID)
}

func TestReadM3U_LineErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"bad duration", "#EXTM3U\n#EXTINF:ten,Title\n/a.mp3\n", 2},
		{"missing comma", "#EXTM3U\n\n#EXTINF:10 Title\n", 3},
		{"bad timestamp", "#X-CREATED:yesterday\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadM3U(strings.NewReader(tt.src), "mem://bad.m3u", 4096)

			var lineErr *playerrors.PlaylistLineError
			require.ErrorAs(t, err, &lineErr)
			require.Equal(t, tt.line, lineErr.Line)
			require.Equal(t, "mem://bad.m3u", lineErr.URI)
			require.ErrorIs(t, err, playerrors.ErrInvalidFormat)
		})
	}
}
