package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Hidden       CellState = -2
	Flagged      CellState = -1
	Mine         CellState = 64
	ExplodedMine CellState = 65
	/*
	 * Each item in a Grid is one of the following values:
	 *
	 *  - 0 to 8 mean the cell is revealed and has that many
	 *    surrounding mines.
	 *
	 *  - -1 means the cell is hidden and flagged.
	 *
	 *  - -2 means the cell is hidden.
	 *
	 *  - 64 means the cell is a mine uncovered at the end of the game.
	 *
	 *  - 65 means the cell is the mine the player stepped on.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Hidden:
		return "-"
	case s == Flagged:
		return "F"
	case s == Mine:
		return "*"
	case s == ExplodedMine:
		return "X"
	case s == 0:
		return "."
	case 0 < s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Grid is the player-visible view of a board in row-major order.
type Grid []CellState

func (g Grid) ToString(cols int) string {
	var b strings.Builder
	for row := range len(g) / cols {
		for col := range cols {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(g[row*cols+col].String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

const (
	BannerLost = "Game Over!"
	BannerWon  = "You Found All Mines!"
)

// Snapshot is everything a renderer needs after a move. Hidden mines are
// never exposed.
type Snapshot struct {
	GameParams
	Flags  int
	Status Status
	Grid   Grid
}

func (s Snapshot) GameOver() bool {
	return s.Status == Lost
}

func (s Snapshot) GameWon() bool {
	return s.Status == Won
}

func (s Snapshot) Banner() string {
	switch s.Status {
	case Lost:
		return BannerLost
	case Won:
		return BannerWon
	default:
		return ""
	}
}

// [Snapshot] implements [fmt.Stringer]
func (s Snapshot) String() string {
	var b strings.Builder
	b.WriteString("   ")
	for col := range s.Cols {
		fmt.Fprintf(&b, "%d", col%10)
		if col < s.Cols-1 {
			b.WriteByte(' ')
		}
	}
	b.WriteByte('\n')
	for row, line := range strings.SplitAfter(s.Grid.ToString(s.Cols), "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(&b, "%2d %s", row, line)
	}
	fmt.Fprintf(&b, "mines: %d  flags: %d", s.Mines, s.Flags)
	if banner := s.Banner(); banner != "" {
		b.WriteString("  " + banner)
	}
	b.WriteByte('\n')
	return b.String()
}

func (g *Game) cellState(i int) CellState {
	c := g.board.Cells[i]
	switch {
	case c.Revealed && c.Mine && i == g.exploded:
		return ExplodedMine
	case c.Revealed && c.Mine:
		return Mine
	case c.Revealed:
		return CellState(c.Adjacent)
	case c.Flagged:
		return Flagged
	default:
		return Hidden
	}
}

func (g *Game) Snapshot() Snapshot {
	grid := make(Grid, len(g.board.Cells))
	for i := range grid {
		grid[i] = g.cellState(i)
	}
	return Snapshot{
		GameParams: g.board.GameParams,
		Flags:      g.board.FlagCount(),
		Status:     g.status,
		Grid:       grid,
	}
}
