// Package swifttest provides an in-memory Swift-style storage server for
// tests. It speaks the subset of the protocol the gateway uses: token auth on
// /auth/v1.0 and object PUT and GET on /v1/{account}/{container}/{id}.
package swifttest

import (
	"crypto/md5" //nolint:gosec // ETags, not security
	"encoding/hex"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// Object is a stored object.
type Object struct {
	Content     []byte
	ContentType string
	Filename    string
	ETag        string
}

// Put describes one PUT the server received.
type Put struct {
	Path        string
	Chunked     bool
	Reads       int
	Bytes       int64
	ContentType string
	Filename    string
	Token       string
}

// Server is a fake upstream. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]credential
	tokens   map[string]bool
	objects  map[string]Object
	puts     []Put
	failures map[string]int
	hold     chan struct{}
	breakAt  int64

	openConns atomic.Int64
	requests  atomic.Int64
}

type credential struct {
	key   string
	token string
}

// NewServer starts a server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		users:    make(map[string]credential),
		tokens:   make(map[string]bool),
		objects:  make(map[string]Object),
		failures: make(map[string]int),
		breakAt:  -1,
	}

	r := chi.NewRouter()
	r.Get("/auth/v1.0", s.handleAuth)
	r.Put("/v1/{account}/{container}/{id}", s.handlePut)
	r.Get("/v1/{account}/{container}/{id}", s.handleGet)

	s.Server = httptest.NewUnstartedServer(r)
	s.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		switch state {
		case http.StateNew:
			s.openConns.Add(1)
		case http.StateClosed, http.StateHijacked:
			s.openConns.Add(-1)
		}
	}
	s.Start()
	return s
}

// AddUser registers credentials and the token handed out for them.
func (s *Server) AddUser(user, key, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user] = credential{key: key, token: token}
	s.tokens[token] = true
}

// RevokeToken makes later requests with token fail with 401.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// SetObject stores obj directly. An empty ETag is computed.
func (s *Server) SetObject(account, container, id string, obj Object) {
	if obj.ETag == "" {
		obj.ETag = etagOf(obj.Content)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key(account, container, id)] = obj
}

// Object returns a stored object.
func (s *Server) Object(account, container, id string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key(account, container, id)]
	return obj, ok
}

// Puts returns the PUT requests received so far.
func (s *Server) Puts() []Put {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Put(nil), s.puts...)
}

// Fail answers every request with method with status until cleared with a
// status of 0.
func (s *Server) Fail(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method)
		return
	}
	s.failures[method] = status
}

// Hold blocks object requests before they answer until release is called.
func (s *Server) Hold() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.hold = nil
			s.mu.Unlock()
			close(ch)
		})
	}
}

// BreakDownloadsAfter makes GET drop the connection after n body bytes.
// A negative n disables it.
func (s *Server) BreakDownloadsAfter(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakAt = n
}

// OpenConns returns the number of client connections currently open.
func (s *Server) OpenConns() int {
	return int(s.openConns.Load())
}

// Requests returns the number of requests served.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	s.mu.Lock()
	cred, ok := s.users[r.Header.Get("X-Auth-User")]
	s.mu.Unlock()

	if !ok || cred.key != r.Header.Get("X-Auth-Key") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("X-Storage-Token", cred.token)
	w.Header().Set("X-Auth-Token", cred.token)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	if !s.admit(w, r) {
		return
	}

	put := Put{
		Path:        r.URL.Path,
		Chunked:     r.ContentLength == -1,
		ContentType: r.Header.Get("Content-Type"),
		Filename:    r.Header.Get("X-Object-Meta-Filename"),
		Token:       r.Header.Get("X-Storage-Token"),
	}

	var body []byte
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Body.Read(buf)
		if n > 0 {
			body = append(body, buf[:n]...)
			put.Reads++
			put.Bytes += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	obj := Object{
		Content:     body,
		ContentType: put.ContentType,
		Filename:    put.Filename,
		ETag:        etagOf(body),
	}

	s.mu.Lock()
	s.puts = append(s.puts, put)
	s.objects[key(chi.URLParam(r, "account"), chi.URLParam(r, "container"), chi.URLParam(r, "id"))] = obj
	s.mu.Unlock()

	w.Header().Set("ETag", obj.ETag)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	if !s.admit(w, r) {
		return
	}

	s.mu.Lock()
	obj, ok := s.objects[key(chi.URLParam(r, "account"), chi.URLParam(r, "container"), chi.URLParam(r, "id"))]
	breakAt := s.breakAt
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("ETag", obj.ETag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Trim(match, `"`) == obj.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Filename != "" {
		w.Header().Set("X-Object-Meta-Filename", obj.Filename)
	}
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	content := obj.Content
	var written int64
	for len(content) > 0 {
		n := min(len(content), 16*1024)
		if breakAt >= 0 && written+int64(n) > breakAt {
			n = int(breakAt - written)
		}
		if _, err := w.Write(content[:n]); err != nil {
			return
		}
		_ = rc.Flush()
		written += int64(n)
		content = content[n:]
		if breakAt >= 0 && written >= breakAt {
			panic(http.ErrAbortHandler)
		}
	}
}

// admit applies Hold, Fail and token checks. It reports whether the request
// should be served.
func (s *Server) admit(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	hold := s.hold
	status, failing := s.failures[r.Method]
	valid := s.tokens[r.Header.Get("X-Storage-Token")]
	s.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return false
		}
	}

	if !failing && valid {
		return true
	}

	// Rejected requests consume their body before answering.
	_, _ = io.Copy(io.Discard, r.Body)
	if !failing {
		status = http.StatusUnauthorized
	}
	w.WriteHeader(status)
	return false
}

func key(account, container, id string) string {
	return account + "/" + container + "/" + id
}

func etagOf(b []byte) string {
	sum := md5.Sum(b) //nolint:gosec // ETags, not security
	return hex.EncodeToString(sum[:])
}
