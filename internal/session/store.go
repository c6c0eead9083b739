package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/observability"
)

// HandlerFunc is an http.HandlerFunc that also receives the caller's session.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, sess *Session)

// Store holds sessions in memory. Expired sessions are dropped lazily on
// access; when MaxSessions is reached the least recently used one is evicted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      config.SessionConfig
	seed     *dataset.Dataset
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates a store. seed, when non-nil, is the dataset every new
// session starts with.
func NewStore(cfg config.SessionConfig, seed *dataset.Dataset, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		seed:     seed,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	sess, ok := s.sessions[id]
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		dataset:   s.seed,
		lastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	s.metrics.SetSessions(len(s.sessions))
	return sess
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	s.metrics.SetSessions(len(s.sessions))
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Handle resolves the session cookie, creating a session when the cookie is
// missing or stale, and passes it to next.
func (s *Store) Handle(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if cookie, err := r.Cookie(s.cfg.CookieName); err == nil {
			sess, _ = s.Get(cookie.Value)
		}

		if sess == nil {
			sess = s.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(s.cfg.TTL.Seconds()),
			})
			s.logger.Debug("session created", "session_id", sess.ID)
		}

		next(w, r, sess)
	}
}

func (s *Store) sweepLocked() {
	cutoff := s.now().Add(-s.cfg.TTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.metrics.SetSessions(len(s.sessions))
		s.logger.Debug("expired sessions removed", "count", removed)
	}
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		seen := sess.idleSince()
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.Info("session evicted", "session_id", oldestID, "max_sessions", s.cfg.MaxSessions)
	}
}
