package handlers

import (
	"errors"
	"net/url"

	"github.com/vancomm/minesweeper-classic/internal/mines"
	"github.com/vancomm/minesweeper-classic/internal/session"
)

// NewGameDTO holds the optional overrides of the configured board params.
type NewGameDTO struct {
	Rows  *int `schema:"rows"`
	Cols  *int `schema:"cols"`
	Mines *int `schema:"mines"`
}

func ParseNewGameDTO(src url.Values, defaults mines.GameParams) (mines.GameParams, error) {
	var dto NewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.GameParams{}, err
	}
	params := defaults
	if dto.Rows != nil {
		params.Rows = *dto.Rows
	}
	if dto.Cols != nil {
		params.Cols = *dto.Cols
	}
	if dto.Mines != nil {
		params.Mines = *dto.Mines
	}
	return params, params.Validate()
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func ParseMoveDTO(src url.Values) (GameMove, mines.Position, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return 0, mines.Position{}, err
	}
	move, err := ParseGameMove(dto.Move)
	if err != nil {
		return 0, mines.Position{}, err
	}
	return move, mines.Position{Row: dto.Row, Col: dto.Col}, nil
}

var ErrPartialParams = errors.New("rows, cols and mines must be given together")

type RecordsDTO struct {
	Seed     *string `schema:"seed"`
	Rows     *int    `schema:"rows"`
	Cols     *int    `schema:"cols"`
	Mines    *int    `schema:"mines"`
	Username *string `schema:"username"`
	Limit    int     `schema:"limit"`
}

const maxRecords = 100

func (dto RecordsDTO) params() (*mines.GameParams, error) {
	if dto.Seed != nil {
		return mines.ParseSeed(*dto.Seed)
	}
	switch {
	case dto.Rows == nil && dto.Cols == nil && dto.Mines == nil:
		return nil, nil
	case dto.Rows == nil || dto.Cols == nil || dto.Mines == nil:
		return nil, ErrPartialParams
	}
	params := mines.GameParams{Rows: *dto.Rows, Cols: *dto.Cols, Mines: *dto.Mines}
	return &params, params.Validate()
}

func (dto RecordsDTO) limit() int {
	if dto.Limit <= 0 || dto.Limit > maxRecords {
		return maxRecords
	}
	return dto.Limit
}

type GameSessionDTO struct {
	SessionID string       `json:"session_id"`
	Grid      mines.Grid   `json:"grid"`
	Rows      int          `json:"rows"`
	Cols      int          `json:"cols"`
	Mines     int          `json:"mines"`
	Flags     int          `json:"flags"`
	Status    mines.Status `json:"status"`
	GameOver  bool         `json:"game_over"`
	GameWon   bool         `json:"game_won"`
	Banner    string       `json:"banner,omitempty"`
	StartedAt int64        `json:"started_at"`
	EndedAt   *int64       `json:"ended_at,omitempty"`
}

// NewGameSessionDTO must be called with the session locked.
func NewGameSessionDTO(s *session.Session) *GameSessionDTO {
	snap := s.Snapshot()
	var endedAt *int64
	if t := s.EndedAt(); t != nil {
		e := t.UnixMilli()
		endedAt = &e
	}
	return &GameSessionDTO{
		SessionID: s.ID,
		Grid:      snap.Grid,
		Rows:      snap.Rows,
		Cols:      snap.Cols,
		Mines:     snap.Mines,
		Flags:     snap.Flags,
		Status:    snap.Status,
		GameOver:  snap.GameOver(),
		GameWon:   snap.GameWon(),
		Banner:    snap.Banner(),
		StartedAt: s.StartedAt().UnixMilli(),
		EndedAt:   endedAt,
	}
}

type MoveResultDTO struct {
	*GameSessionDTO
	Exploded bool             `json:"exploded"`
	Revealed []mines.Position `json:"revealed"`
}

func NewMoveResultDTO(s *session.Session, res mines.MoveResult) *MoveResultDTO {
	revealed := res.Revealed
	if revealed == nil {
		revealed = []mines.Position{}
	}
	return &MoveResultDTO{
		GameSessionDTO: NewGameSessionDTO(s),
		Exploded:       res.Outcome == mines.Exploded,
		Revealed:       revealed,
	}
}
