package apiclient

import (
	"fmt"
	"net/url"
	"strings"
)

// PayloadKind selects how a request payload is encoded.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadJSON
	PayloadMultipart
	PayloadQuery
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadNone:
		return "none"
	case PayloadJSON:
		return "json"
	case PayloadMultipart:
		return "multipart"
	case PayloadQuery:
		return "query"
	default:
		return fmt.Sprintf("PayloadKind(%d)", int(k))
	}
}

// Endpoint describes one logical API operation.
type Endpoint struct {
	Name   string
	Method string
	// Path is relative to the client prefix and may contain {name} placeholders.
	Path string
	Kind PayloadKind
}

// Placeholders returns the placeholder names in the path template, in order.
func (e Endpoint) Placeholders() []string {
	var names []string
	rest := e.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return names
		}
		names = append(names, rest[open+1:open+end])
		rest = rest[open+end+1:]
	}
}

// expandPath substitutes every {name} placeholder with the path-escaped value
// from params. Each value is escaped on its own so it always stays within one
// path segment.
func (e Endpoint) expandPath(params map[string]string) (string, error) {
	var b strings.Builder
	rest := e.Path
	for {
		open := strings.IndexAny(rest, "{}")
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		if rest[open] == '}' {
			return "", fmt.Errorf("path template %q: unbalanced '}'", e.Path)
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("path template %q: unterminated placeholder", e.Path)
		}
		name := rest[open+1 : open+end]
		if name == "" {
			return "", fmt.Errorf("path template %q: empty placeholder", e.Path)
		}
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("missing path parameter %q", name)
		}
		// PathEscape keeps dot segments, which path normalization would resolve.
		if value == "." || value == ".." {
			return "", fmt.Errorf("path parameter %q: dot segment %q not allowed", name, value)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
}
