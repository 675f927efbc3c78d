package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an *Error.
type Kind int

const (
	// KindTransport: the request could not be sent or no response arrived.
	KindTransport Kind = iota + 1
	// KindCancelled: the caller's context was cancelled mid-flight.
	KindCancelled
	// KindDecode: a response arrived but its body is not JSON.
	KindDecode
	// KindInvalidInput: the call could not be encoded.
	KindInvalidInput
	// KindStatus: non-2xx response in strict mode.
	KindStatus
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrTransport    = errors.New("transport failure")
	ErrCancelled    = errors.New("request cancelled")
	ErrDecode       = errors.New("response body is not valid json")
	ErrInvalidInput = errors.New("invalid input")
	ErrStatus       = errors.New("unexpected response status")
)

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindCancelled:
		return ErrCancelled
	case KindDecode:
		return ErrDecode
	case KindInvalidInput:
		return ErrInvalidInput
	case KindStatus:
		return ErrStatus
	default:
		return nil
	}
}

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindCancelled:
		return "cancelled"
	case KindDecode:
		return "decode"
	case KindInvalidInput:
		return "invalid_input"
	case KindStatus:
		return "status"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the failure returned by every client call.
type Error struct {
	Op   string
	Kind Kind
	// StatusCode and Body are set when a response was received.
	StatusCode int
	Body       []byte
	// Detail is the backend's error message, when the body carried one.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	switch e.Kind {
	case KindStatus:
		fmt.Fprintf(&b, "%s %d", ErrStatus.Error(), e.StatusCode)
		if e.Detail != "" {
			b.WriteString(": ")
			b.WriteString(e.Detail)
		} else if s := bodySnippet(e.Body); s != "" {
			b.WriteString(": ")
			b.WriteString(s)
		}
	case KindDecode:
		b.WriteString(ErrDecode.Error())
		if e.Err != nil {
			b.WriteString(": ")
			b.WriteString(e.Err.Error())
		}
		fmt.Fprintf(&b, " (status %d, body %q)", e.StatusCode, bodySnippet(e.Body))
	default:
		if s := e.Kind.sentinel(); s != nil {
			b.WriteString(s.Error())
		} else {
			b.WriteString("error")
		}
		if e.Err != nil {
			b.WriteString(": ")
			b.WriteString(e.Err.Error())
		}
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

func invalidInput(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInvalidInput, Err: err}
}

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

// extractDetail pulls the FastAPI-style "detail" member out of an error body.
func extractDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}
	return string(env.Detail)
}
