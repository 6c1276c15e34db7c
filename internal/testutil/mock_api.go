// Package testutil provides testing utilities for the history client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// BasePath is the API prefix served by MockAPI.
const BasePath = "/api/v1"

// Response defines the behavior for a mock endpoint response.
type Response struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Request is a recorded inbound request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Header   http.Header
}

// MockAPI is a configurable mock history API server for testing.
// Paths passed to its setters are relative to BasePath ("/emperors").
type MockAPI struct {
	server    *httptest.Server
	mu        sync.RWMutex
	handlers  map[string]http.HandlerFunc
	sequences map[string][]Response
	requests  []Request
}

// NewMockAPI creates and starts a mock history API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:  make(map[string]http.HandlerFunc),
		sequences: make(map[string][]Response),
	}

	r := chi.NewRouter()
	r.Use(mock.record)
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/*", mock.serve)
		r.Post("/*", mock.serve)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, NewErrorResponse(http.StatusNotFound, "route not found"))
	})

	mock.server = httptest.NewServer(r)
	return mock
}

// URL returns the mock server origin.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the origin plus BasePath, suitable for client.Config.BaseURL.
func (m *MockAPI) BaseURL() string {
	return m.server.URL + BasePath
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears recorded requests and configured responses.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[string]http.HandlerFunc)
	m.sequences = make(map[string][]Response)
	m.requests = nil
}

// SetHandler sets a custom handler for a path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sequences, path)
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp Response) {
	m.SetSequence(path, resp)
}

// SetSequence configures responses served in order for a path. The last
// response repeats once the sequence is consumed.
func (m *MockAPI) SetSequence(path string, resps ...Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, path)
	m.sequences[path] = append([]Response(nil), resps...)
}

// SetJSON configures a fixed JSON response for a path.
func (m *MockAPI) SetJSON(path string, status int, v any) {
	m.SetResponse(path, NewJSONResponse(status, v))
}

// SetPaged serves items for path, honoring the skip and limit query
// parameters like the real list endpoints.
func SetPaged[T any](m *MockAPI, path string, items []T) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = len(items)
		}
		start := min(max(skip, 0), len(items))
		end := min(start+limit, len(items))
		writeResponse(w, NewJSONResponse(http.StatusOK, items[start:end]))
	})
}

// Requests returns a copy of every recorded request.
func (m *MockAPI) Requests() []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Request(nil), m.requests...)
}

// RequestsFor returns recorded requests for a path relative to BasePath.
func (m *MockAPI) RequestsFor(path string) []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Request
	for _, r := range m.requests {
		if r.Path == BasePath+path {
			out = append(out, r)
		}
	}
	return out
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request.
func (m *MockAPI) LastRequest() (Request, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}

func (m *MockAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
			Header:   r.Header.Clone(),
		})
		m.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (m *MockAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := "/" + chi.URLParam(r, "*")

	m.mu.Lock()
	handler, hasHandler := m.handlers[path]
	var resp Response
	seq, hasSeq := m.sequences[path]
	if hasSeq && len(seq) > 0 {
		resp = seq[0]
		if len(seq) > 1 {
			m.sequences[path] = seq[1:]
		}
	}
	m.mu.Unlock()

	switch {
	case hasHandler:
		handler(w, r)
	case hasSeq && len(seq) > 0:
		if resp.Delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(resp.Delay):
			}
		}
		writeResponse(w, resp)
	default:
		writeResponse(w, NewErrorResponse(http.StatusNotFound, fmt.Sprintf("no fixture for %s", path)))
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse encodes v as a JSON response body.
func NewJSONResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal fixture: %v", err))
	}
	return Response{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewErrorResponse creates a response carrying the server error envelope.
func NewErrorResponse(status int, message string) Response {
	return NewJSONResponse(status, map[string]any{"code": status, "message": message})
}

// NewNullMessageResponse creates an error envelope whose message is null.
func NewNullMessageResponse(status int) Response {
	return NewJSONResponse(status, map[string]any{"code": status, "message": nil})
}

// NewRawResponse creates a response with a verbatim body.
func NewRawResponse(status int, body string) Response {
	return Response{StatusCode: status, Body: body}
}
