// Package client talks to the authentication REST API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): Login,
//     GetMe and Refresh.
//  2. A concrete HTTP implementation (see HTTPClient) that encodes JSON
//     requests, attaches the bearer token, keeps a same-origin cookie jar and
//     maps failures to sentinel errors.
//  3. Best-effort decoding of error bodies (see ParseErrorBody) into a typed
//     APIError.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrMalformedResponse. Non-2xx
// responses are returned as *APIError; use errors.As to inspect them.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
