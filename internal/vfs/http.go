package vfs

import (
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultHTTPTimeout bounds a whole request, body included.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPBackend streams http and https resources. Streams are read-only
// and cannot seek, so GetContents buffers them incrementally.
type HTTPBackend struct {
	client    *http.Client
	UserAgent string
}

// NewHTTPBackend creates a backend using client, or a client with
// DefaultHTTPTimeout when client is nil.
func NewHTTPBackend(client *http.Client) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPBackend{client: client, UserAgent: "musicvfs/1.0"}
}

// Open issues a GET for u.
func (b *HTTPBackend) Open(u *url.URL, mode Mode) (Stream, error) {
	if mode.Writable() {
		return nil, ErrReadOnly
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{URI: u.String(), StatusCode: resp.StatusCode}
	}

	return &httpStream{body: resp.Body}, nil
}

type httpStream struct {
	body io.ReadCloser
}

func (s *httpStream) Read(p []byte) (int, error) { return s.body.Read(p) }

func (s *httpStream) Write([]byte) (int, error) { return 0, ErrReadOnly }

func (s *httpStream) Seek(int64, int) (int64, error) { return 0, ErrNotSeekable }

func (s *httpStream) Close() error { return s.body.Close() }
