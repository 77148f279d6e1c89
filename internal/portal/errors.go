package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
)

// ErrorKind classifies failures for user-facing messages.
type ErrorKind int

const (
	// KindTransport covers timeouts, refused connections and other failures
	// before a response arrived.
	KindTransport ErrorKind = iota
	// KindForbidden is a 401/403 from the backend.
	KindForbidden
	// KindNotFound is a 404 from the backend.
	KindNotFound
	// KindValidation is a 422 from the backend.
	KindValidation
	// KindServer is any other status >= 400.
	KindServer
	// KindDecode means the response body could not be parsed.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// APIError is returned by every Client method that fails.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Method  string
	Path    string
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api %s %s", e.Method, e.Path)
	if e.Status > 0 {
		fmt.Fprintf(&b, " returned status %d", e.Status)
	} else {
		b.WriteString(" failed")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// FieldMessages returns validation messages flattened as "field: message",
// ordered by field.
func (e *APIError) FieldMessages() []string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, msg := range e.Fields[field] {
			out = append(out, field+": "+msg)
		}
	}
	return out
}

// KindOf reports the ErrorKind of err, or KindTransport with ok=false when
// err is not an APIError.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindTransport, false
}

// IsForbidden reports whether err is a 401/403 API error.
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsValidation reports whether err is a 422 API error.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsTransport reports whether err failed before a response arrived.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

func isKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsTimeout reports whether err was caused by a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status == 422:
		return KindValidation
	default:
		return KindServer
	}
}

// errorBody is the error envelope the backend sends with 4xx/5xx.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func parseErrorBody(raw []byte) (string, map[string][]string) {
	if len(raw) == 0 {
		return "", nil
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		text := strings.TrimSpace(string(raw))
		if len(text) > 200 {
			text = text[:200]
		}
		return text, nil
	}
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = strings.TrimSpace(body.Error)
	}
	return msg, body.Errors
}
