package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/vision-client/pkg/httpclient"
)

const (
	// DefaultBaseURL is where the backend listens out of the box.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultPrefix is the API path prefix.
	DefaultPrefix = "/api/v1"
	// DefaultTimeout bounds a single call on the default transport. Uploads of
	// weights and datasets can be slow.
	DefaultTimeout = 5 * time.Minute

	headerRequestID = "X-Request-ID"
)

// Client issues requests against the vision platform API. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	baseURL   string
	prefix    string
	timeout   time.Duration
	transport httpclient.Client
	strict    bool
	log       Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host requests are sent to.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	}
}

// WithPrefix sets the path prefix placed before every endpoint path.
func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = normalizePrefix(prefix)
	}
}

// WithTransport injects the transport used to send requests.
func WithTransport(t httpclient.Client) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithTimeout sets the per-call timeout of the default transport. It has no
// effect when a transport is injected.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCompatibilityMode disables status checking: every response body is
// decoded and returned, whatever its status code.
func WithCompatibilityMode() Option {
	return func(c *Client) {
		c.strict = false
	}
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client. Configuration is fixed once New returns.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		prefix:  DefaultPrefix,
		timeout: DefaultTimeout,
		strict:  true,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = httpclient.NewRestyClient(c.timeout)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Prefix returns the configured path prefix.
func (c *Client) Prefix() string { return c.prefix }

// Strict reports whether non-2xx responses are returned as errors.
func (c *Client) Strict() bool { return c.strict }

// Response is a decoded-as-JSON response body. The client imposes no schema.
type Response struct {
	Operation  string
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Op: r.Operation, Kind: KindDecode, StatusCode: r.StatusCode, Body: r.Body, Err: err}
	}
	return nil
}

// Value returns the body as generic JSON values (maps, slices, float64, ...).
func (r *Response) Value() (any, error) {
	var v any
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// OK reports whether the response status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Perform issues exactly one request for ep and returns its JSON body.
func (c *Client) Perform(ctx context.Context, ep Endpoint, in Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, closers, err := c.build(ep, in)
	defer closeAll(closers)
	if err != nil {
		return nil, invalidInput(ep.Name, err)
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		kind := KindTransport
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			kind = KindCancelled
		}
		c.log.DebugObj("api request failed", "api_request", map[string]any{
			"op":          ep.Name,
			"method":      req.Method,
			"url":         req.URL,
			"request_id":  req.Headers[headerRequestID],
			"kind":        kind.String(),
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, &Error{Op: ep.Name, Kind: kind, Err: err}
	}

	status := resp.StatusCode()
	c.log.DebugObj("api request completed", "api_request", map[string]any{
		"op":          ep.Name,
		"method":      req.Method,
		"url":         req.URL,
		"request_id":  req.Headers[headerRequestID],
		"status":      status,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return c.handle(ep, resp)
}

func (c *Client) handle(ep Endpoint, resp httpclient.Response) (*Response, error) {
	status := resp.StatusCode()
	body := resp.Body()
	if c.strict && (status < 200 || status > 299) {
		return nil, &Error{
			Op:         ep.Name,
			Kind:       KindStatus,
			StatusCode: status,
			Body:       body,
			Detail:     extractDetail(body),
		}
	}
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Op: ep.Name, Kind: KindDecode, StatusCode: status, Body: body, Err: err}
	}
	return &Response{
		Operation:  ep.Name,
		StatusCode: status,
		Header:     resp.Header(),
		Body:       raw,
	}, nil
}

// build turns an endpoint and caller request into a transport request. The
// returned closers cover every blob in the request, whether or not it was
// encoded.
func (c *Client) build(ep Endpoint, in Request) (*httpclient.Request, []io.Closer, error) {
	closers := blobClosers(in.Fields)
	if ep.Method == "" {
		return nil, closers, errors.New("endpoint has no method")
	}
	path, err := ep.expandPath(in.PathParams)
	if err != nil {
		return nil, closers, err
	}

	req := &httpclient.Request{
		Method: ep.Method,
		URL:    c.baseURL + c.prefix + path,
		Headers: map[string]string{
			"Accept":        "application/json",
			headerRequestID: uuid.NewString(),
		},
	}

	switch ep.Kind {
	case PayloadNone:
		if hasBlob(in.Fields) {
			return nil, closers, errors.New("endpoint takes no payload but blobs were given")
		}
		return req, closers, nil
	case PayloadJSON:
		if hasBlob(in.Fields) {
			return nil, closers, errors.New("json payload cannot carry blobs")
		}
		if in.Body == nil {
			return nil, closers, errors.New("json payload requires a body")
		}
		raw, err := json.Marshal(in.Body)
		if err != nil {
			return nil, closers, fmt.Errorf("encode json body: %w", err)
		}
		req.Body = raw
		req.Headers["Content-Type"] = "application/json"
		return req, closers, nil
	case PayloadMultipart:
		parts, err := multipartParts(in.Fields)
		if err != nil {
			return nil, closers, err
		}
		if len(parts) == 0 {
			return nil, closers, errors.New("multipart payload has no fields")
		}
		req.Parts = parts
		return req, closers, nil
	case PayloadQuery:
		query, err := encodeQuery(in.Fields)
		if err != nil {
			return nil, closers, err
		}
		if query != "" {
			req.URL += "?" + query
		}
		return req, closers, nil
	default:
		return nil, closers, fmt.Errorf("unsupported payload kind %s", ep.Kind)
	}
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
