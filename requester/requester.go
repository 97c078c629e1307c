// Package requester owns the HTTP session against the Peerberry API: the
// base URL, the persistent default-header set (including the Authorization
// header while a login is active), and the translation of failure responses
// into typed errors. It executes exactly one request per call. It never
// retries, caches, or rate-limits.
package requester

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/peerberrygo/peerberry/endpoints"
)

// Session is the mutable transport state owned by a single client instance.
// Login installs the Authorization header through AddHeader, logout removes
// it; no other call site mutates the header set, so no locking is needed as
// long as one logical thread drives the instance.
type Session struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient replaces the underlying HTTP client (primarily for tests
// and custom transport settings).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.httpClient = c
	}
}

// WithBaseURL points the session at a different API root (stub servers in
// tests, staging environments).
func WithBaseURL(baseURL string) Option {
	return func(s *Session) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// New creates an unauthenticated session against the production API.
func New(options ...Option) *Session {
	s := &Session{
		httpClient: http.DefaultClient,
		baseURL:    endpoints.BaseURL,
		headers:    http.Header{},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// AddHeader sets a default header carried by every subsequent request,
// replacing any previous value.
func (s *Session) AddHeader(name, value string) {
	s.headers.Set(name, value)
}

// RemoveHeader deletes a default header.
func (s *Session) RemoveHeader(name string) {
	s.headers.Del(name)
}

// HeaderValue returns the current value of a default header, or "" when
// unset.
func (s *Session) HeaderValue(name string) string {
	return s.headers.Get(name)
}

// BaseURL returns the API root this session targets.
func (s *Session) BaseURL() string { return s.baseURL }

// Request describes one call against the API.
type Request struct {
	// Path is the endpoint path relative to the session's base URL.
	Path string
	// Method defaults to GET when empty.
	Method string
	// Query parameters. List-valued filters must already be flattened into
	// bracketed-index keys (see AddIndexed).
	Query url.Values
	// Form is the form-encoded POST body.
	Form url.Values
	// OnFailure, when non-nil, replaces the generic error kind for the
	// credential/business-rule failure statuses (400, 401, 403). The
	// returned *APIError unwraps to it.
	OnFailure error
}

// Do executes the request and returns the raw response body. Used for the
// binary endpoints (agreements, spreadsheet exports).
func (s *Session) Do(req Request) ([]byte, error) {
	body, _, err := s.roundTrip(req)
	return body, err
}

// DoJSON executes the request and decodes the JSON response body into out.
func (s *Session) DoJSON(req Request, out any) error {
	body, reqID, err := s.roundTrip(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "[Session.DoJSON] decoding %s response (request %s)", req.Path, reqID)
	}
	return nil
}

func (s *Session) roundTrip(req Request) ([]byte, string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := s.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var payload io.Reader
	if len(req.Form) > 0 {
		payload = strings.NewReader(req.Form.Encode())
	}

	httpReq, err := http.NewRequest(method, target, payload)
	if err != nil {
		return nil, "", errors.Wrapf(err, "[Session.roundTrip] building %s %s", method, req.Path)
	}

	for name, values := range s.headers {
		for _, v := range values {
			httpReq.Header.Set(name, v)
		}
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	reqID := uuid.New().String()
	httpReq.Header.Set("X-Request-Id", reqID)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, reqID, errors.Wrapf(ErrNetwork, "[Session.roundTrip] %s %s: %v", method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, reqID, errors.Wrapf(ErrNetwork, "[Session.roundTrip] reading %s body: %v", req.Path, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", req.Path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Msg("peerberry api call")

	if resp.StatusCode >= 400 {
		return nil, reqID, s.failure(req, resp.StatusCode, body)
	}
	return body, reqID, nil
}

// failure translates a non-2xx response into an *APIError. The override
// kind only applies to the statuses the API uses for rejected credentials
// and business rules; a 500 stays a plain platform error even when an
// override was supplied.
func (s *Session) failure(req Request, status int, body []byte) error {
	apiErr := &APIError{
		StatusCode: status,
		Message:    failureMessage(body),
	}
	if req.OnFailure != nil {
		switch status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			apiErr.kind = req.OnFailure
		}
	}
	return apiErr
}

// failureMessage digs the human-readable message out of an error body. The
// API has shipped three shapes over time: a list of {"message": ...}
// objects under "errors", a flat map under "errors", and a bare "message"
// field. Unrecognized bodies are passed through truncated.
func failureMessage(body []byte) string {
	var listShape struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &listShape); err == nil && len(listShape.Errors) > 0 && listShape.Errors[0].Message != "" {
		return listShape.Errors[0].Message
	}

	var mapShape struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &mapShape); err == nil && len(mapShape.Errors) > 0 {
		for _, msg := range mapShape.Errors {
			return msg
		}
	}

	var flatShape struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flatShape); err == nil && flatShape.Message != "" {
		return flatShape.Message
	}

	const maxRaw = 200
	raw := strings.TrimSpace(string(body))
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
	}
	if raw == "" {
		raw = "no error detail in response"
	}
	return raw
}

// AddIndexed flattens a list-valued filter into the bracketed-index form
// the API expects: key[0]=a, key[1]=b, order preserved.
func AddIndexed(query url.Values, key string, values []string) {
	for i, v := range values {
		query.Set(key+"["+strconv.Itoa(i)+"]", v)
	}
}
