package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// VFS holds per-scheme stream metrics. It implements vfs.Observer so a
// registry can report into it directly.
type VFS struct {
	Opens        *prometheus.CounterVec
	OpenFailures *prometheus.CounterVec
	ReadBytes    *prometheus.CounterVec
	WrittenBytes *prometheus.CounterVec
	OpenFiles    *prometheus.GaugeVec
}

// NewVFS creates and registers VFS metrics with the given registry.
func NewVFS(reg prometheus.Registerer) *VFS {
	m := &VFS{
		Opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "musicvfs",
			Subsystem: "vfs",
			Name:      "opens_total",
			Help:      "Streams opened successfully.",
		}, []string{"scheme"}),
		OpenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "musicvfs",
			Subsystem: "vfs",
			Name:      "open_failures_total",
			Help:      "Open attempts that failed.",
		}, []string{"scheme"}),
		ReadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "musicvfs",
			Subsystem: "vfs",
			Name:      "read_bytes_total",
			Help:      "Bytes read through VFS streams.",
		}, []string{"scheme"}),
		WrittenBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "musicvfs",
			Subsystem: "vfs",
			Name:      "written_bytes_total",
			Help:      "Bytes written through VFS streams.",
		}, []string{"scheme"}),
		OpenFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "musicvfs",
			Subsystem: "vfs",
			Name:      "open_files",
			Help:      "Streams currently open.",
		}, []string{"scheme"}),
	}

	reg.MustRegister(
		m.Opens,
		m.OpenFailures,
		m.ReadBytes,
		m.WrittenBytes,
		m.OpenFiles,
	)

	return m
}

func (m *VFS) Opened(scheme string, err error) {
	if err != nil {
		m.OpenFailures.WithLabelValues(scheme).Inc()
		return
	}
	m.Opens.WithLabelValues(scheme).Inc()
	m.OpenFiles.WithLabelValues(scheme).Inc()
}

func (m *VFS) Read(scheme string, n int) {
	m.ReadBytes.WithLabelValues(scheme).Add(float64(n))
}

func (m *VFS) Wrote(scheme string, n int) {
	m.WrittenBytes.WithLabelValues(scheme).Add(float64(n))
}

func (m *VFS) Closed(scheme string) {
	m.OpenFiles.WithLabelValues(scheme).Dec()
}
