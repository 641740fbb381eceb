package session

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minesweeper-classic/internal/mines"
)

var ErrNotFound = errors.New("session not found")

// Store keeps live sessions in memory and evicts the ones left idle for
// longer than the ttl.
type Store struct {
	logger *slog.Logger
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewStore(logger *slog.Logger, rnd *rand.Rand, ttl time.Duration) *Store {
	return &Store{
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		rnd:      rnd,
	}
}

func newID() string {
	u := [16]byte(uuid.New())
	return base64.RawURLEncoding.EncodeToString(u[:])
}

func (s *Store) newGame(params mines.GameParams) (*mines.Game, error) {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return mines.NewGame(params, s.rnd)
}

func (s *Store) Create(params mines.GameParams, playerID *int64) (*Session, error) {
	game, err := s.newGame(params)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &Session{
		ID:        newID(),
		PlayerID:  playerID,
		game:      game,
		newGame:   s.newGame,
		now:       s.now,
		startedAt: now.UTC(),
		lastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Debug("session created",
		slog.String("id", session.ID), slog.String("params", params.Seed()))

	return session, nil
}

// Get returns the session and marks it as recently used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	session.Lock()
	session.Touch()
	session.Unlock()

	return session, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	deadline := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		session.Lock()
		idle := session.lastSeen.Before(deadline)
		session.Unlock()
		if idle {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("evicted idle sessions",
					slog.Int("evicted", n), slog.Int("live", s.Len()))
			}
		}
	}
}
