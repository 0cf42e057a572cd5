package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired is returned when a request failed with 401 and the
	// follow-up token refresh could not restore the session. The local
	// credential store has been cleared by the time callers see it.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoRefreshToken is returned when a refresh is needed but no
	// refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// FieldError is one entry of a 422 validation detail.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Field renders the location path ("body.email") for display.
func (f FieldError) Field() string {
	parts := make([]string, 0, len(f.Loc))
	for _, p := range f.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}

// APIError is a non-2xx response from the backend. Detail carries the
// server's message; Fields is populated for validation failures.
type APIError struct {
	Status    int
	Detail    string
	Fields    []FieldError
	RequestID string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error: %s (status %d)", e.Detail, e.Status)
	}
	return fmt.Sprintf("api error: status %d", e.Status)
}

func (e *APIError) IsValidation() bool { return e.Status == http.StatusUnprocessableEntity }
func (e *APIError) IsNotFound() bool   { return e.Status == http.StatusNotFound }
func (e *APIError) IsForbidden() bool  { return e.Status == http.StatusForbidden }

// TransportError is a request that produced no HTTP response at all
// (connection refused, DNS failure, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err represents a network failure rather
// than a server-issued error response.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// errorEnvelope matches the backend's {"detail": ...} shape, where detail
// is either a plain string or a list of field errors.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

func decodeError(resp *http.Response, requestID string) error {
	apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(env.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var fields []FieldError
	if err := json.Unmarshal(env.Detail, &fields); err == nil {
		apiErr.Fields = fields
		apiErr.Detail = "validation failed"
		return apiErr
	}

	apiErr.Detail = string(env.Detail)
	return apiErr
}
