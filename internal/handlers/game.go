package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vancomm/minesweeper-classic/internal/config"
	"github.com/vancomm/minesweeper-classic/internal/middleware"
	"github.com/vancomm/minesweeper-classic/internal/mines"
	"github.com/vancomm/minesweeper-classic/internal/repository"
	"github.com/vancomm/minesweeper-classic/internal/session"
)

type RecordStore interface {
	CreateGameRecord(ctx context.Context, params repository.CreateGameRecordParams) (*repository.GameRecord, error)
	GetHighscores(ctx context.Context, filter repository.HighscoreFilter) ([]repository.Highscore, error)
}

var ErrForeignSession = errors.New("session belongs to another player")

type GameHandler struct {
	logger   *slog.Logger
	sessions *session.Store
	records  RecordStore
	ws       *config.WebSocket
	defaults mines.GameParams
}

func NewGameHandler(
	logger *slog.Logger,
	sessions *session.Store,
	records RecordStore,
	ws *config.WebSocket,
	defaults mines.GameParams,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		sessions: sessions,
		records:  records,
		ws:       ws,
		defaults: defaults,
	}
}

func playerID(r *http.Request) *int64 {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		return nil
	}
	id := claims.PlayerID
	return &id
}

func (g *GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := g.sessions.Get(r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) {
		sendError(w, g.logger, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		internalError(w, g.logger, "unable to fetch session", "error", err)
		return nil, false
	}
	return s, true
}

// lookupOwned is lookup for requests that change the game. Sessions started
// by a logged in player only accept moves from that player.
func (g *GameHandler) lookupOwned(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := g.lookup(w, r)
	if !ok {
		return nil, false
	}
	if s.PlayerID == nil {
		return s, true
	}
	if id := playerID(r); id == nil || *id != *s.PlayerID {
		sendError(w, g.logger, http.StatusForbidden, ErrForeignSession)
		return nil, false
	}
	return s, true
}

// claimRecord must be called with the session locked.
func claimRecord(s *session.Session) *repository.CreateGameRecordParams {
	if !s.ClaimRecord() {
		return nil
	}
	return &repository.CreateGameRecordParams{
		SessionID: s.ID,
		PlayerID:  s.PlayerID,
		Params:    s.Params(),
		Won:       s.Status() == mines.Won,
		StartedAt: s.StartedAt(),
		EndedAt:   *s.EndedAt(),
	}
}

// saveRecord stores a finished game. A failed insert is logged but does
// not fail the move that finished the game.
func (g *GameHandler) saveRecord(ctx context.Context, params *repository.CreateGameRecordParams) {
	if params == nil {
		return
	}
	record, err := g.records.CreateGameRecord(ctx, *params)
	if err != nil {
		g.logger.Error("unable to save game record",
			slog.String("session", params.SessionID), slog.Any("error", err))
		return
	}
	g.logger.Debug("game record saved",
		slog.Int64("id", record.GameRecordID),
		slog.Bool("won", record.Won),
		slog.Duration("playtime", record.EndedAt.Sub(record.StartedAt).Round(time.Millisecond)),
	)
}

func (g *GameHandler) badMove(w http.ResponseWriter, err error) {
	if errors.Is(err, mines.ErrOutOfBounds) || errors.Is(err, mines.ErrInvalidParams) {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	internalError(w, g.logger, "unable to apply move", "error", err)
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseNewGameDTO(r.URL.Query(), g.defaults)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s, err := g.sessions.Create(params, playerID(r))
	if err != nil {
		g.badMove(w, err)
		return
	}

	s.Lock()
	dto := NewGameSessionDTO(s)
	s.Unlock()

	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookup(w, r)
	if !ok {
		return
	}

	s.Lock()
	dto := NewGameSessionDTO(s)
	s.Unlock()

	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	move, pos, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s, ok := g.lookupOwned(w, r)
	if !ok {
		return
	}

	s.Lock()
	var res mines.MoveResult
	switch move {
	case Reveal:
		res, err = s.Reveal(pos.Row, pos.Col)
	case Flag:
		err = s.ToggleFlag(pos.Row, pos.Col)
	case Chord:
		res, err = s.Chord(pos.Row, pos.Col)
	}
	if err != nil {
		s.Unlock()
		g.badMove(w, err)
		return
	}
	dto := NewMoveResultDTO(s, res)
	record := claimRecord(s)
	s.Unlock()

	g.logger.Debug("move applied",
		slog.String("session", s.ID),
		slog.String("move", move.String()),
		slog.Any("position", pos),
		slog.Int("revealed", len(res.Revealed)),
	)

	g.saveRecord(r.Context(), record)
	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookupOwned(w, r)
	if !ok {
		return
	}

	s.Lock()
	s.Forfeit()
	dto := NewGameSessionDTO(s)
	record := claimRecord(s)
	s.Unlock()

	g.saveRecord(r.Context(), record)
	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := g.lookupOwned(w, r)
	if !ok {
		return
	}

	s.Lock()
	err := s.Reset()
	if err != nil {
		s.Unlock()
		g.badMove(w, err)
		return
	}
	dto := NewGameSessionDTO(s)
	s.Unlock()

	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) Records(w http.ResponseWriter, r *http.Request) {
	var dto RecordsDTO
	if err := decoder.Decode(&dto, r.URL.Query()); err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}
	params, err := dto.params()
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	g.sendHighscores(w, r, repository.HighscoreFilter{
		Username:   dto.Username,
		GameParams: params,
		Limit:      dto.limit(),
	})
}

func (g *GameHandler) MyRecords(w http.ResponseWriter, r *http.Request) {
	id := playerID(r)
	if id == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	g.sendHighscores(w, r, repository.HighscoreFilter{PlayerID: id, Limit: maxRecords})
}

func (g *GameHandler) sendHighscores(w http.ResponseWriter, r *http.Request, filter repository.HighscoreFilter) {
	highscores, err := g.records.GetHighscores(r.Context(), filter)
	if err != nil {
		internalError(w, g.logger, "unable to fetch highscores",
			slog.Any("error", err), slog.Any("filter", filter))
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}
	sendJSONOrLog(w, g.logger, highscores)
}
