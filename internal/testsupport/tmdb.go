package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type stubResponse struct {
	status int
	body   string
}

// TMDBServer is a stub TMDB API. Routes are keyed by path plus, for search
// endpoints, the query parameter ("/search/multi?三体"). Unknown routes
// answer an empty search page.
type TMDBServer struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]stubResponse
	requests map[string]int
	total    int
}

// NewTMDBServer starts a stub server and registers cleanup.
func NewTMDBServer(t testing.TB) *TMDBServer {
	t.Helper()
	s := &TMDBServer{
		routes:   make(map[string]stubResponse),
		requests: make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL to hand to tmdb.New.
func (s *TMDBServer) URL() string {
	return s.server.URL
}

// JSON answers route with a 200 and body.
func (s *TMDBServer) JSON(route, body string) {
	s.Respond(route, http.StatusOK, body)
}

// Respond answers route with status and body.
func (s *TMDBServer) Respond(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route] = stubResponse{status: status, body: body}
}

// Requests returns how many times route was hit.
func (s *TMDBServer) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// TotalRequests returns the number of requests served.
func (s *TMDBServer) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *TMDBServer) serve(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Path
	if query := r.URL.Query().Get("query"); query != "" {
		route += "?" + query
	}

	s.mu.Lock()
	s.total++
	s.requests[route]++
	resp, ok := s.routes[route]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"page":1,"results":[],"total_pages":0,"total_results":0}`))
		return
	}
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
