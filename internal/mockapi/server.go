// Package mockapi is an in-process fake of the Steepshot content API.
//
// It reproduces the endpoints used by the client together with the error
// shapes the real server produces, so the client can be exercised end to end
// without network access.
package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fixture credentials.
const (
	Username = "alice"
	Password = "secret123"

	// CookielessUsername logs in successfully but never receives a session cookie.
	CookielessUsername = "ghost"
	CookielessPassword = "boo12345"

	DefaultPrefix = "/api/v1/"
	defaultLimit  = 10
)

type account struct {
	password string
}

// Server is the fake API. It is safe for concurrent use.
type Server struct {
	mux    *http.ServeMux
	prefix string
	log    zerolog.Logger

	mu       sync.Mutex
	accounts map[string]account
	sessions map[string]string // session id -> username
	votes    map[string]string // session|identifier -> last vote action
	lowRated map[string]bool
	follows  map[string]map[string]bool
	comments map[string][]post
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix mounts the API under prefix instead of DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		s.prefix = "/" + strings.Trim(prefix, "/") + "/"
		if s.prefix == "//" {
			s.prefix = "/"
		}
	}
}

// WithLogger logs every request handled by the server.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a server seeded with fixture accounts, posts and categories.
func NewServer(opts ...Option) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		prefix:   DefaultPrefix,
		log:      zerolog.Nop(),
		accounts: map[string]account{},
		sessions: map[string]string{},
		votes:    map[string]string{},
		lowRated: map[string]bool{},
		follows:  map[string]map[string]bool{},
		comments: map[string][]post{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc(s.prefix+"login", s.loginHandler)
	s.mux.HandleFunc(s.prefix+"register", s.registerHandler)
	s.mux.HandleFunc(s.prefix+"logout", s.logoutHandler)
	s.mux.HandleFunc(s.prefix+"posts/", s.postsHandler)
	s.mux.HandleFunc(s.prefix+"post", s.uploadHandler)
	s.mux.HandleFunc(s.prefix+"post/", s.postActionHandler)
	s.mux.HandleFunc(s.prefix+"user/", s.userHandler)
	s.mux.HandleFunc(s.prefix+"categories/", s.categoriesHandler)
	s.mux.HandleFunc("/", notFoundHandler)
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.loggingMiddleware(s.mux).ServeHTTP(w, r)
}

// Prefix is the path the API is mounted under.
func (s *Server) Prefix() string { return s.prefix }

// loggingMiddleware logs requests and echoes the caller's request id.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.Info().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Str("request_id", requestID).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Finished request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "<html><head><title>404 Not Found</title></head><body><h1>Not Found</h1><p>The requested URL %s was not found on this server.</p></body></html>", r.URL.Path)
}

func serverError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("<h1>Server Error (500)</h1>"))
}

// fieldErrors is a validation error map that keeps insertion order on the wire.
type fieldErrors struct {
	keys []string
	msgs map[string][]string
}

func (f *fieldErrors) add(field, msg string) {
	if f.msgs == nil {
		f.msgs = map[string][]string{}
	}
	if _, ok := f.msgs[field]; !ok {
		f.keys = append(f.keys, field)
	}
	f.msgs[field] = append(f.msgs[field], msg)
}

func (f *fieldErrors) empty() bool { return len(f.keys) == 0 }

func (f *fieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.msgs[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sessionUser resolves the sessionid cookie.
func (s *Server) sessionUser(r *http.Request) (sessionID, username string, ok bool) {
	c, err := r.Cookie("sessionid")
	if err != nil || c.Value == "" {
		return "", "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok = s.sessions[c.Value]
	return c.Value, username, ok
}

// requireSession writes a 403 and returns false when the call is anonymous.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (sessionID, username string, ok bool) {
	sessionID, username, ok = s.sessionUser(r)
	if !ok {
		writeDetail(w, http.StatusForbidden, "Authentication credentials were not provided.")
	}
	return sessionID, username, ok
}

func (s *Server) newSession(w http.ResponseWriter, username string) {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = username
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: id, Path: "/", HttpOnly: true})
}
