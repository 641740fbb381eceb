package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardFrom builds a board from rows of '*' (mine) and '.' (safe).
func boardFrom(t *testing.T, rows ...string) *Board {
	t.Helper()
	require.NotEmpty(t, rows)
	b := newBoard(GameParams{Rows: len(rows), Cols: len(rows[0])})
	for r, line := range rows {
		require.Len(t, line, b.Cols)
		for c, ch := range line {
			if ch == '*' {
				b.Cells[r*b.Cols+c].Mine = true
				b.Mines++
			}
		}
	}
	b.countAdjacent()
	return b
}

func naiveAdjacent(b *Board, row, col int) (count int) {
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if (r != row || c != col) && r >= 0 && r < b.Rows && c >= 0 && c < b.Cols &&
				b.Cells[r*b.Cols+c].Mine {
				count++
			}
		}
	}
	return
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params GameParams
	}{
		{name: "1x1(0)", params: GameParams{Rows: 1, Cols: 1, Mines: 0}},
		{name: "2x2(3)", params: GameParams{Rows: 2, Cols: 2, Mines: 3}},
		{name: "10x10(20)", params: DefaultParams},
		{name: "9x9(10)", params: GameParams{Rows: 9, Cols: 9, Mines: 10}},
		{name: "16x30(99)", params: GameParams{Rows: 16, Cols: 30, Mines: 99}},
		{name: "1x50(49)", params: GameParams{Rows: 1, Cols: 50, Mines: 49}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r := rand.New(rand.NewPCG(1, 2))
			for range 50 {
				b, err := Generate(test.params, r)
				require.NoError(t, err)
				require.Len(t, b.Cells, test.params.Size())
				assert.Equal(t, test.params.Mines, b.MineCount())

				for i, c := range b.Cells {
					assert.False(t, c.Revealed)
					assert.False(t, c.Flagged)
					if !c.Mine {
						row, col := i/b.Cols, i%b.Cols
						assert.Equal(t, naiveAdjacent(b, row, col), c.Adjacent,
							"adjacent count at %d:%d", row, col)
					}
				}
			}
		})
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a, err := Generate(DefaultParams, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	b, err := Generate(DefaultParams, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, a.Cells, b.Cells)
}

func TestGenerateInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params GameParams
	}{
		{name: "no rows", params: GameParams{Rows: 0, Cols: 5, Mines: 1}},
		{name: "no cols", params: GameParams{Rows: 5, Cols: 0, Mines: 1}},
		{name: "negative mines", params: GameParams{Rows: 5, Cols: 5, Mines: -1}},
		{name: "all mines", params: GameParams{Rows: 5, Cols: 5, Mines: 25}},
		{name: "too many mines", params: GameParams{Rows: 2, Cols: 2, Mines: 10}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, err := Generate(test.params, rand.New(rand.NewPCG(1, 2)))
			assert.Nil(t, b)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestNeighborsClampToEdges(t *testing.T) {
	b := newBoard(GameParams{Rows: 3, Cols: 4})

	count := func(i int) (n int) {
		for range b.neighbors(i) {
			n++
		}
		return
	}

	assert.Equal(t, 3, count(0))  // corner
	assert.Equal(t, 5, count(1))  // top edge
	assert.Equal(t, 8, count(5))  // interior
	assert.Equal(t, 3, count(11)) // opposite corner
}

func TestBoardCell(t *testing.T) {
	b := boardFrom(t,
		"*.",
		"..",
	)

	c, err := b.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, Cell{Adjacent: 1}, c)

	_, err = b.Cell(2, 0)
	var posErr PositionError
	require.ErrorAs(t, err, &posErr)
	assert.Equal(t, PositionError{Row: 2, Col: 0}, posErr)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestBoardComplete(t *testing.T) {
	b := boardFrom(t,
		"*.",
		".*",
	)
	assert.False(t, b.Complete())

	b.Cells[1].Revealed = true
	b.Cells[2].Revealed = true
	assert.True(t, b.Complete())

	b.Cells[0].Flagged = true
	assert.True(t, b.Complete())
}
