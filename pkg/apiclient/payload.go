package apiclient

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/samvad-hq/vision-client/pkg/httpclient"
)

const defaultBlobContentType = "application/octet-stream"

// Blob is a binary payload value sent as a multipart file part. If Reader also
// implements io.Closer the client closes it once the request has been sent.
type Blob struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}

// OpenBlob opens the file at path as a Blob, guessing its content type from
// the extension.
func OpenBlob(path string) (Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return Blob{}, fmt.Errorf("open blob: %w", err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = defaultBlobContentType
	}
	return Blob{FileName: filepath.Base(path), ContentType: ct, Reader: f}, nil
}

// Field is one named payload value. Value may be a scalar (string, bool,
// integer or float, including named types over those), a pointer to a scalar,
// a Blob or a []Blob. Nil values and nil pointers are treated as absent.
type Field struct {
	Name  string
	Value any
}

// Request carries the caller-supplied parts of one call.
type Request struct {
	PathParams map[string]string
	// Fields feed multipart and query payloads, in order.
	Fields []Field
	// Body is marshaled for JSON payloads.
	Body any
}

// String returns a pointer to v.
func String(v string) *string { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

var errUnsupportedValue = errors.New("unsupported payload value")

// formatScalar renders a scalar field value. ok is false when the value is
// absent.
func formatScalar(v any) (s string, ok bool, err error) {
	if v == nil {
		return "", false, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true, nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true, nil
	default:
		return "", false, fmt.Errorf("%w: %T", errUnsupportedValue, v)
	}
}

// multipartParts converts fields into ordered multipart parts.
func multipartParts(fields []Field) ([]httpclient.Part, error) {
	var parts []httpclient.Part
	addBlob := func(name string, b Blob) error {
		if b.Reader == nil {
			return fmt.Errorf("field %q: blob has no reader", name)
		}
		fileName := b.FileName
		if fileName == "" {
			fileName = name
		}
		ct := b.ContentType
		if ct == "" {
			ct = defaultBlobContentType
		}
		parts = append(parts, httpclient.Part{Field: name, FileName: fileName, ContentType: ct, Reader: b.Reader})
		return nil
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("field with empty name")
		}
		switch v := f.Value.(type) {
		case Blob:
			if err := addBlob(f.Name, v); err != nil {
				return nil, err
			}
		case *Blob:
			if v == nil {
				continue
			}
			if err := addBlob(f.Name, *v); err != nil {
				return nil, err
			}
		case []Blob:
			for _, b := range v {
				if err := addBlob(f.Name, b); err != nil {
					return nil, err
				}
			}
		default:
			s, ok, err := formatScalar(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			if !ok {
				continue
			}
			parts = append(parts, httpclient.Part{Field: f.Name, Reader: strings.NewReader(s)})
		}
	}
	return parts, nil
}

// blobClosers returns the closable readers of every blob in fields.
func blobClosers(fields []Field) []io.Closer {
	var closers []io.Closer
	add := func(b Blob) {
		if c, ok := b.Reader.(io.Closer); ok {
			closers = append(closers, c)
		}
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case Blob:
			add(v)
		case *Blob:
			if v != nil {
				add(*v)
			}
		case []Blob:
			for _, b := range v {
				add(b)
			}
		}
	}
	return closers
}

// hasBlob reports whether any field carries a blob.
func hasBlob(fields []Field) bool {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case Blob, []Blob:
			return true
		case *Blob:
			if v != nil {
				return true
			}
		}
	}
	return false
}

// encodeQuery percent-encodes fields in declaration order.
func encodeQuery(fields []Field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		if f.Name == "" {
			return "", errors.New("field with empty name")
		}
		switch f.Value.(type) {
		case Blob, *Blob, []Blob:
			return "", fmt.Errorf("field %q: blobs cannot be sent as query parameters", f.Name)
		}
		s, ok, err := formatScalar(f.Value)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", f.Name, err)
		}
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(s))
	}
	return b.String(), nil
}
