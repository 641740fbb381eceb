package mines

import (
	"iter"
	"log/slog"
	"math/rand/v2"
)

var Log *slog.Logger = slog.Default()

type Cell struct {
	Mine     bool
	Revealed bool
	Flagged  bool
	Adjacent int // mined neighbours; meaningless when Mine is set
}

// Board is a row-major grid of cells. Mine and Adjacent are fixed once the
// board is generated; only Revealed and Flagged change during play.
type Board struct {
	GameParams
	Cells []Cell
}

func newBoard(params GameParams) *Board {
	return &Board{
		GameParams: params,
		Cells:      make([]Cell, params.Size()),
	}
}

// Generate places params.Mines mines uniformly at random by sampling
// positions and retrying duplicates, then counts neighbours.
func Generate(params GameParams, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := newBoard(params)
	for placed := 0; placed < params.Mines; {
		row, col := r.IntN(params.Rows), r.IntN(params.Cols)
		i := row*params.Cols + col
		if b.Cells[i].Mine {
			continue
		}
		b.Cells[i].Mine = true
		placed++
	}
	b.countAdjacent()

	Log.Debug("board generated", slog.String("params", params.Seed()))

	return b, nil
}

func (b *Board) countAdjacent() {
	for i := range b.Cells {
		if b.Cells[i].Mine {
			continue
		}
		count := 0
		for j := range b.neighbors(i) {
			if b.Cells[j].Mine {
				count++
			}
		}
		b.Cells[i].Adjacent = count
	}
}

func (b *Board) index(row, col int) (int, error) {
	if !b.InBounds(row, col) {
		return 0, PositionError{Row: row, Col: col}
	}
	return row*b.Cols + col, nil
}

func (b *Board) position(i int) Position {
	return Position{Row: i / b.Cols, Col: i % b.Cols}
}

// neighbors yields the indices of the up to 8 cells surrounding i,
// clamped to the board edges.
func (b *Board) neighbors(i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		row, col := i/b.Cols, i%b.Cols
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := row+dr, col+dc
				if !b.InBounds(r, c) {
					continue
				}
				if !yield(r*b.Cols + c) {
					return
				}
			}
		}
	}
}

func (b *Board) Cell(row, col int) (Cell, error) {
	i, err := b.index(row, col)
	if err != nil {
		return Cell{}, err
	}
	return b.Cells[i], nil
}

// Complete reports whether every non-mine cell has been revealed. Flags
// and the revealed state of mines do not matter.
func (b *Board) Complete() bool {
	for _, c := range b.Cells {
		if !c.Mine && !c.Revealed {
			return false
		}
	}
	return true
}

// revealMines uncovers every mine. A flag on a mine is removed so that no
// cell is ever flagged and revealed at once.
func (b *Board) revealMines() {
	for i := range b.Cells {
		if b.Cells[i].Mine {
			b.Cells[i].Revealed = true
			b.Cells[i].Flagged = false
		}
	}
}

func (b *Board) MineCount() (count int) {
	for _, c := range b.Cells {
		if c.Mine {
			count++
		}
	}
	return
}

func (b *Board) FlagCount() (count int) {
	for _, c := range b.Cells {
		if c.Flagged {
			count++
		}
	}
	return
}
