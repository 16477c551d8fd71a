package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jscyril/musicvfs/internal/vfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var _ vfs.Observer = (*VFS)(nil)

func TestVFS_CountsRegistryTraffic(t *testing.T) {
	require := require.New(t)
	reg := prometheus.NewRegistry()
	m := NewVFS(reg)

	mem := vfs.NewMemoryBackend()
	mem.Put("song.txt", []byte("hello world"))
	fs := vfs.NewRegistry(vfs.WithBackend("mem", mem), vfs.WithObserver(m))

	data, err := fs.GetContents("mem://song.txt")
	require.NoError(err)
	require.Len(data, 11)

	f, err := fs.Open("mem://out.txt", vfs.ModeWrite)
	require.NoError(err)
	require.Equal(1.0, testutil.ToFloat64(m.OpenFiles.WithLabelValues("mem")))
	_, err = vfs.WriteString(f, "abc")
	require.NoError(err)
	require.NoError(f.Close())

	_, err = fs.Open("mem://missing", vfs.ModeRead)
	require.True(errors.Is(err, vfs.ErrNotFound))

	require.Equal(2.0, testutil.ToFloat64(m.Opens.WithLabelValues("mem")))
	require.Equal(1.0, testutil.ToFloat64(m.OpenFailures.WithLabelValues("mem")))
	require.Equal(11.0, testutil.ToFloat64(m.ReadBytes.WithLabelValues("mem")))
	require.Equal(3.0, testutil.ToFloat64(m.WrittenBytes.WithLabelValues("mem")))
	require.Equal(0.0, testutil.ToFloat64(m.OpenFiles.WithLabelValues("mem")))
}

func TestServer_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewVFS(reg)
	m.Read("file", 42)

	srv := NewServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `musicvfs_vfs_read_bytes_total{scheme="file"} 42`))
}

func TestServer_StartServesAndReportsBindErrors(t *testing.T) {
	require := require.New(t)
	reg := prometheus.NewRegistry()
	NewVFS(reg).Opened("mem", nil)

	srv := NewServer("127.0.0.1:0", reg)
	require.NoError(srv.Start())
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	// the address is taken now
	require.Error(NewServer(srv.Addr(), reg).Start())
	require.Error(NewServer("127.0.0.1:99999", reg).Start())
}
