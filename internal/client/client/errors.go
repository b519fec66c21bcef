package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable wraps transport failures: refused connections, DNS,
	// timeouts and cancelled requests.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches *APIError values with status 401 or 403.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// ErrorSource tells which decoding tier produced an APIError message.
type ErrorSource int

const (
	// SourceStatus means the body could not be used; only the status is known.
	SourceStatus ErrorSource = iota
	// SourceDetail means the body carried a "detail" field.
	SourceDetail
	// SourceRawJSON means the body was JSON without a usable "detail".
	SourceRawJSON
)

func (s ErrorSource) String() string {
	switch s {
	case SourceDetail:
		return "detail"
	case SourceRawJSON:
		return "raw_json"
	default:
		return "status"
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	// Detail is the human-readable message. Empty when Source is SourceStatus.
	Detail string
	Source ErrorSource
}

func (e *APIError) Error() string {
	if e.Source == SourceStatus || e.Detail == "" {
		return fmt.Sprintf("request failed (%d)", e.StatusCode)
	}
	return e.Detail
}

// Is lets errors.Is(err, ErrUnauthorized) match rejected credentials and
// rejected tokens.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// ParseErrorBody turns an error response body into an APIError, trying in
// order:
//
//  1. a JSON object with a truthy "detail" field (strings verbatim, other
//     values as compact JSON);
//  2. any other JSON value, compacted;
//  3. nothing usable (not JSON, empty, or null): status only.
func ParseErrorBody(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Source: SourceStatus}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return apiErr
	}

	if obj, ok := v.(map[string]any); ok {
		if d, ok := obj["detail"]; ok && truthy(d) {
			apiErr.Source = SourceDetail
			if s, ok := d.(string); ok {
				apiErr.Detail = s
				return apiErr
			}
			b, err := json.Marshal(d)
			if err == nil {
				apiErr.Detail = string(b)
				return apiErr
			}
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		// Trailing garbage after a valid value.
		b, err := json.Marshal(v)
		if err != nil {
			return apiErr
		}
		buf.Reset()
		buf.Write(b)
	}
	apiErr.Source = SourceRawJSON
	apiErr.Detail = buf.String()
	return apiErr
}

// truthy reports whether a decoded detail carries a message: null, "",
// false and 0 do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
