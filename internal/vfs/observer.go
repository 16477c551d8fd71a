package vfs

// Observer receives per-scheme I/O notifications from a Registry and
// the files it opens. Implementations must be safe for concurrent use.
type Observer interface {
	Opened(scheme string, err error)
	Read(scheme string, n int)
	Wrote(scheme string, n int)
	Closed(scheme string)
}

type nopObserver struct{}

func (nopObserver) Opened(string, error) {}
func (nopObserver) Read(string, int)     {}
func (nopObserver) Wrote(string, int)    {}
func (nopObserver) Closed(string)        {}
