package session

import (
	"sync"
	"time"

	"github.com/vancomm/minesweeper-classic/internal/mines"
)

// Session is one live game. Callers must hold the session lock while
// moving or reading the game.
type Session struct {
	ID       string
	PlayerID *int64

	mu        sync.Mutex
	game      *mines.Game
	newGame   func(mines.GameParams) (*mines.Game, error)
	now       func() time.Time
	startedAt time.Time
	endedAt   *time.Time
	lastSeen  time.Time
	recorded  bool
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) Params() mines.GameParams { return s.game.Params() }
func (s *Session) Status() mines.Status     { return s.game.Status() }
func (s *Session) Snapshot() mines.Snapshot { return s.game.Snapshot() }
func (s *Session) StartedAt() time.Time     { return s.startedAt }
func (s *Session) EndedAt() *time.Time      { return s.endedAt }

// Touch marks the session as in use so the sweeper keeps it.
func (s *Session) Touch() {
	s.lastSeen = s.now()
}

func (s *Session) finish() {
	if s.endedAt == nil && s.game.Status().Terminal() {
		t := s.now().UTC()
		s.endedAt = &t
	}
}

func (s *Session) Reveal(row, col int) (mines.MoveResult, error) {
	res, err := s.game.Reveal(row, col)
	s.finish()
	return res, err
}

func (s *Session) ToggleFlag(row, col int) error {
	err := s.game.ToggleFlag(row, col)
	s.finish()
	return err
}

func (s *Session) Chord(row, col int) (mines.MoveResult, error) {
	res, err := s.game.Chord(row, col)
	s.finish()
	return res, err
}

func (s *Session) Forfeit() {
	s.game.Forfeit()
	s.finish()
}

// Reset discards the board and deals a new one with the same params.
func (s *Session) Reset() error {
	game, err := s.newGame(s.game.Params())
	if err != nil {
		return err
	}
	s.game = game
	s.startedAt = s.now().UTC()
	s.endedAt = nil
	s.recorded = false
	return nil
}

// ClaimRecord returns true exactly once per finished game, so that the
// result is stored a single time no matter how many moves follow.
func (s *Session) ClaimRecord() bool {
	if s.recorded || s.endedAt == nil {
		return false
	}
	s.recorded = true
	return true
}
