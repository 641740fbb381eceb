package mines

import (
	"fmt"
	"strings"
)

type GameParams struct {
	Rows, Cols, Mines int
}

// DefaultParams is the classic 10x10 board with 20 mines.
var DefaultParams = GameParams{Rows: 10, Cols: 10, Mines: 20}

// MaxSide bounds both board dimensions, which also keeps Rows*Cols from
// overflowing.
const MaxSide = 1024

func (p GameParams) Unpack() (rows int, cols int, mines int) {
	return p.Rows, p.Cols, p.Mines
}

func (p GameParams) Size() int {
	return p.Rows * p.Cols
}

// Validate rejects params the generator could not satisfy. A board with
// every cell mined would never finish placing mines.
func (p GameParams) Validate() error {
	if p.Rows < 1 || p.Cols < 1 {
		return fmt.Errorf(
			"%w: board must be at least 1x1 (have %dx%d)",
			ErrInvalidParams, p.Rows, p.Cols,
		)
	}
	if p.Rows > MaxSide || p.Cols > MaxSide {
		return fmt.Errorf(
			"%w: board must be at most %dx%d (have %dx%d)",
			ErrInvalidParams, MaxSide, MaxSide, p.Rows, p.Cols,
		)
	}
	if p.Mines < 0 {
		return fmt.Errorf(
			"%w: mine count cannot be negative (have %d)",
			ErrInvalidParams, p.Mines,
		)
	}
	if p.Mines >= p.Size() {
		return fmt.Errorf(
			"%w: mine count must be less than %d (have %d)",
			ErrInvalidParams, p.Size(), p.Mines,
		)
	}
	return nil
}

func (p GameParams) InBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.Mines)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Rows, &p.Cols, &p.Mines)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (seed = "%s", n = %d, err = %w)`,
			seed, n, err,
		)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
