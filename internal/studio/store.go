package studio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store keeps the live sessions keyed by id.
type Store struct {
	generator Generator
	previews  Releaser
	logger    zerolog.Logger
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Generator Generator
	Previews  Releaser
	Logger    zerolog.Logger
	TTL       time.Duration
	Now       func() time.Time
}

// NewStore returns an empty store.
func NewStore(opts StoreOptions) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		generator: opts.Generator,
		previews:  opts.Previews,
		logger:    opts.Logger.With().Str("component", "studio").Logger(),
		ttl:       ttl,
		now:       now,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a fresh session.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.generator, s.previews, s.logger, s.now)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.logger.Debug().Str("session_id", sess.id).Msg("session created")
	return sess
}

// Get looks up a session.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown. The bool reports whether a new session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Delete closes and forgets a session.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.Close()
	}
	return ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions untouched for longer than the TTL. Sessions with a
// generation in flight are kept.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		seen, generating := sess.idleSince()
		if generating || seen.After(cutoff) {
			continue
		}
		expired = append(expired, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	if len(expired) > 0 {
		s.logger.Info().Int("expired", len(expired)).Msg("swept idle sessions")
	}
	return len(expired)
}

// CloseAll closes every session, releasing their previews.
func (s *Store) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}
