package httpclient

import (
	"context"
	"io"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Part is one entry of a multipart body. Parts without a FileName are sent as
// plain form fields.
type Part struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Request is a fully built outbound call. At most one of Body or Parts is set.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Parts   []Part
}

// Multipart reports whether the request carries a multipart body.
func (r *Request) Multipart() bool {
	return r != nil && len(r.Parts) > 0
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req *Request) (Response, error)
}
