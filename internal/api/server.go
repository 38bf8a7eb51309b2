package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/autoclass/internal/authoring"
	"github.com/pbaille/autoclass/internal/category"
	"github.com/pbaille/autoclass/internal/domain"
	"github.com/pbaille/autoclass/internal/profile"
	"github.com/pbaille/autoclass/internal/warehouse"
)

// SessionFactory starts a new authoring session with its own catalog cache.
type SessionFactory func() *authoring.Session

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 256
)

// Server serves the authoring form and its JSON API
type Server struct {
	addr       string
	newSession SessionFactory
	logger     *zap.Logger

	// Idle sessions expire after sessionTTL; past maxSessions the least
	// recently used one is evicted.
	sessionTTL  time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session  *authoring.Session
	lastUsed time.Time
}

// New creates a new API server
func New(newSession SessionFactory, addr string, logger *zap.Logger) *Server {
	return &Server{
		addr:        addr,
		newSession:  newSession,
		logger:      logger,
		sessionTTL:  defaultSessionTTL,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*sessionEntry),
	}
}

// Handler returns the routed handler, wrapped with CORS headers
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Form
	mux.HandleFunc("GET /{$}", s.form)
	mux.HandleFunc("POST /sessions/{id}/form", s.submitForm)

	// Sessions
	mux.HandleFunc("POST /sessions", s.createSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.deleteSession)
	mux.HandleFunc("GET /sessions/{id}/tags", s.listTags)
	mux.HandleFunc("GET /sessions/{id}/schemas", s.listSchemas)
	mux.HandleFunc("POST /sessions/{id}/profiles", s.submitProfile)

	// Stateless
	mux.HandleFunc("POST /preview", s.preview)
	mux.HandleFunc("GET /categories", s.listCategories)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting server", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) startSession() (string, *authoring.Session) {
	id := uuid.New().String()
	sess := s.newSession()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)
	for len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[id] = &sessionEntry{session: sess, lastUsed: now}

	return id, sess
}

func (s *Server) session(r *http.Request) (*authoring.Session, bool) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastUsed) > s.sessionTTL {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastUsed = now
	return e.session, true
}

// endSession forgets a session and its catalog cache. It reports whether
// the session existed.
func (s *Server) endSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *Server) expireLocked(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.lastUsed) > s.sessionTTL {
			delete(s.sessions, id)
		}
	}
}

func (s *Server) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for id, e := range s.sessions {
		if oldest == "" || e.lastUsed.Before(oldestAt) {
			oldest, oldestAt = id, e.lastUsed
		}
	}
	delete(s.sessions, oldest)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, _ := s.startSession()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.endSession(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	tags, err := sess.Tags(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func (s *Server) listSchemas(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	schemas, err := sess.Schemas(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"schemas": schemas})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": category.All()})
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	d, err := decodeDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := profile.Serialize(d)
	if err != nil {
		writeFailure(w, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) submitProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	d, err := decodeDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := sess.Submit(r.Context(), d)
	if err != nil {
		writeFailure(w, err, res)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// decodeDraft reads a JSON draft. Absent fields keep the form defaults and
// unknown fields are rejected.
func decodeDraft(r *http.Request) (domain.ProfileDraft, error) {
	d := domain.NewProfileDraft()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return domain.ProfileDraft{}, fmt.Errorf("invalid request body: %w", err)
	}
	return d, nil
}

// failureResponse is the body of a rejected submission
type failureResponse struct {
	Error    string         `json:"error"`
	Reason   profile.Reason `json:"reason,omitempty"`
	TagName  string         `json:"tag_name,omitempty"`
	Category string         `json:"category,omitempty"`
	Schema   string         `json:"schema,omitempty"`
	Executed []string       `json:"executed,omitempty"`
}

func writeFailure(w http.ResponseWriter, err error, res *authoring.Result) {
	body := failureResponse{Error: err.Error()}

	var verr *profile.ValidationError
	var execErr *warehouse.ExecutionError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body.Reason = verr.Reason
		body.TagName = verr.TagName
		body.Category = verr.Category
		body.Schema = verr.Schema
	case errors.As(err, &execErr):
		status = http.StatusBadGateway
	}
	if res != nil {
		body.Executed = res.Executed
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
