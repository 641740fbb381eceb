package mines

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/gammazero/deque"
)

type Status int8

const (
	InProgress Status = iota
	Lost
	Won
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Lost:
		return "lost"
	case Won:
		return "won"
	default:
		return "unknown"
	}
}

func (s Status) Terminal() bool {
	return s == Lost || s == Won
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*s = InProgress
	case "lost":
		*s = Lost
	case "won":
		*s = Won
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Outcome tells whether a single move blew up a mine.
type Outcome int8

const (
	Continuing Outcome = iota
	Exploded
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type MoveResult struct {
	Outcome  Outcome
	Revealed []Position
}

func (m *MoveResult) merge(o MoveResult) {
	if o.Outcome == Exploded {
		m.Outcome = Exploded
	}
	m.Revealed = append(m.Revealed, o.Revealed...)
}

// Game is a board together with its status. Once the status is terminal
// the board no longer changes. A Game is not safe for concurrent use.
type Game struct {
	board    *Board
	status   Status
	exploded int
}

func NewGame(params GameParams, r *rand.Rand) (*Game, error) {
	board, err := Generate(params, r)
	if err != nil {
		return nil, err
	}
	return newGameFromBoard(board), nil
}

func newGameFromBoard(board *Board) *Game {
	return &Game{board: board, status: InProgress, exploded: -1}
}

func (g *Game) Params() GameParams {
	return g.board.GameParams
}

func (g *Game) Status() Status {
	return g.status
}

func (g *Game) Cell(row, col int) (Cell, error) {
	return g.board.Cell(row, col)
}

// Reveal uncovers the cell at row:col. A zero cell floods outwards through
// its hidden, unflagged, non-mine neighbours. Revealing a mine loses the
// game and uncovers all mines. Moves on a finished game, a revealed cell or
// a flagged cell are no-ops.
func (g *Game) Reveal(row, col int) (MoveResult, error) {
	i, err := g.board.index(row, col)
	if err != nil {
		return MoveResult{}, err
	}
	res := g.reveal(i)
	g.CheckComplete()
	return res, nil
}

func (g *Game) reveal(i int) MoveResult {
	if g.status.Terminal() {
		return MoveResult{}
	}

	cells := g.board.Cells
	if cells[i].Revealed || cells[i].Flagged {
		return MoveResult{}
	}

	cells[i].Revealed = true
	res := MoveResult{Revealed: []Position{g.board.position(i)}}

	if cells[i].Mine {
		g.status = Lost
		g.exploded = i
		g.board.revealMines()
		res.Outcome = Exploded
		Log.Debug("mine exploded", slog.Any("position", g.board.position(i)))
		return res
	}

	if cells[i].Adjacent != 0 {
		return res
	}

	// A cell is pushed only when it flips to revealed, so each cell enters
	// the queue at most once.
	var todo deque.Deque[int]
	todo.PushBack(i)
	for todo.Len() != 0 {
		j := todo.PopFront()
		for k := range g.board.neighbors(j) {
			c := &cells[k]
			if c.Revealed || c.Mine || c.Flagged {
				continue
			}
			c.Revealed = true
			res.Revealed = append(res.Revealed, g.board.position(k))
			if c.Adjacent == 0 {
				todo.PushBack(k)
			}
		}
	}

	return res
}

// ToggleFlag flips the flag on a hidden cell. It is a no-op on revealed
// cells and finished games.
func (g *Game) ToggleFlag(row, col int) error {
	i, err := g.board.index(row, col)
	if err != nil {
		return err
	}
	if g.status.Terminal() || g.board.Cells[i].Revealed {
		return nil
	}
	g.board.Cells[i].Flagged = !g.board.Cells[i].Flagged

	/* flags alone never complete a board */
	g.CheckComplete()
	return nil
}

// Chord reveals every hidden, unflagged neighbour of a revealed number
// whose flag count matches its number.
func (g *Game) Chord(row, col int) (MoveResult, error) {
	i, err := g.board.index(row, col)
	if err != nil {
		return MoveResult{}, err
	}

	var res MoveResult
	c := g.board.Cells[i]
	if g.status.Terminal() || !c.Revealed || c.Mine || c.Adjacent == 0 {
		return res, nil
	}

	flags := 0
	hidden := make([]int, 0, 8)
	for j := range g.board.neighbors(i) {
		n := g.board.Cells[j]
		if n.Flagged {
			flags++
		} else if !n.Revealed {
			hidden = append(hidden, j)
		}
	}
	if flags != c.Adjacent {
		return res, nil
	}

	for _, j := range hidden {
		res.merge(g.reveal(j))
		if g.status.Terminal() {
			break
		}
	}
	g.CheckComplete()
	return res, nil
}

// Forfeit gives up an unfinished game and uncovers the mines.
func (g *Game) Forfeit() {
	if g.status.Terminal() {
		return
	}
	g.status = Lost
	g.board.revealMines()
}

// CheckComplete reports whether every non-mine cell is revealed. The first
// time that holds for an unfinished game the game is won and the mines are
// uncovered.
func (g *Game) CheckComplete() bool {
	if !g.board.Complete() {
		return false
	}
	if g.status == InProgress {
		g.status = Won
		g.board.revealMines()
		Log.Debug("board complete", slog.String("params", g.board.Seed()))
	}
	return true
}
