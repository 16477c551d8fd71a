package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryListRemove(t *testing.T) {
	reg, mem := newMemRegistry(t)
	mem.Put("lists/b.m3u", []byte("b"))
	mem.Put("lists/a.m3u", []byte("a"))
	mem.Put("lists/nested/c.m3u", []byte("c"))
	mem.Put("top", []byte("t"))

	uris, err := reg.List("mem://lists")
	require.NoError(t, err)
	require.Equal(t, []string{"mem://lists/a.m3u", "mem://lists/b.m3u"}, uris)

	top, err := reg.List("mem://")
	require.NoError(t, err)
	require.Equal(t, []string{"mem://top"}, top)

	require.NoError(t, reg.Remove("mem://lists/a.m3u"))
	require.ErrorIs(t, reg.Remove("mem://lists/a.m3u"), ErrNotFound)
	require.Equal(t, []string{"lists/b.m3u", "lists/nested/c.m3u", "top"}, mem.Names())

	_, err = reg.List("mem://absent")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = reg.Open("mem://lists", ModeRead)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, reg.Remove("mem://lists/nested"), ErrNotFound)
}

func TestLocalListRemove(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))

	reg := NewRegistry()
	paths, err := reg.List(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "z.txt")}, paths)

	require.NoError(t, reg.Remove(paths[0]))
	require.ErrorIs(t, reg.Remove(paths[0]), ErrNotFound)

	_, err = reg.List(filepath.Join(dir, "absent"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListUnsupported(t *testing.T) {
	reg := NewRegistry(WithBackend("pipe", pipeBackend(nil, 1, -1, nil)))
	_, err := reg.List("pipe://x")
	require.ErrorIs(t, err, ErrNotSupported)
	require.ErrorIs(t, reg.Remove("pipe://x"), ErrNotSupported)
	_, err = reg.List("nope://x")
	require.ErrorIs(t, err, ErrUnknownScheme)
}

func TestJoin(t *testing.T) {
	require.Equal(t, filepath.Join("data", "x.m3u"), Join("data", "x.m3u"))
	require.Equal(t, "mem://lists/my%20list.m3u", Join("mem://lists/", "my list.m3u"))
}
