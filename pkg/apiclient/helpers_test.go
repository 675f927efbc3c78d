package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/vision-client/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
	header http.Header
}

func (f fakeResponse) Body() []byte        { return f.body }
func (f fakeResponse) StatusCode() int     { return f.status }
func (f fakeResponse) Header() http.Header { return f.header }

// fakeTransport records requests and answers from fn.
type fakeTransport struct {
	mu   sync.Mutex
	reqs []*httpclient.Request
	fn   func(ctx context.Context, req *httpclient.Request) (httpclient.Response, error)
}

func (f *fakeTransport) Do(ctx context.Context, req *httpclient.Request) (httpclient.Response, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.fn == nil {
		return fakeResponse{status: http.StatusOK, body: []byte(`{}`)}, nil
	}
	return f.fn(ctx, req)
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeTransport) last() *httpclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return nil
	}
	return f.reqs[len(f.reqs)-1]
}

// newServerClient starts an httptest server and a client pointed at it
// through the resty transport.
func newServerClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithTransport(httpclient.NewRestyClient(5 * time.Second)),
	}, opts...)
	return New(opts...)
}

// trackingReader records whether Close was called.
type trackingReader struct {
	data   []byte
	off    int
	closed bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}
