package commands

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-classic/internal/mines"
)

type Name string

const (
	Noop    Name = "g"
	Open    Name = "o"
	Flag    Name = "f"
	Chord   Name = "c"
	Forfeit Name = "r"
	New     Name = "n"
)

// Maps known commands to number of arguments
var commandNargs = map[Name]int{
	Noop:    0,
	Open:    2,
	Flag:    2,
	Chord:   2,
	Forfeit: 0,
	New:     0,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidNargs   = errors.New("invalid number of arguments")
)

type Command struct {
	Name     Name
	Row, Col int
}

func (c Command) String() string {
	if commandNargs[c.Name] == 2 {
		return fmt.Sprintf("%s %d %d", c.Name, c.Row, c.Col)
	}
	return string(c.Name)
}

func parseRowCol(args []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(args[0]); err != nil {
		err = errors.New("first argument must be an int")
		return
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		err = errors.New("second argument must be an int")
		return
	}
	return
}

func Parse(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	name := Name(strings.ToLower(parts[0]))
	nargs, ok := commandNargs[name]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return Command{}, fmt.Errorf(
			"%w for %q: want %d, have %d",
			ErrInvalidNargs, name, nargs, len(parts)-1,
		)
	}
	cmd := Command{Name: name}
	if nargs == 2 {
		row, col, err := parseRowCol(parts[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Row, cmd.Col = row, col
	}
	return cmd, nil
}

// LineError reports the line of a batch that could not be parsed.
type LineError struct {
	Line int
	Err  error
}

// [LineError] implements [error]
func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

func bySep(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

// ParseBatch parses newline-separated commands, skipping blank lines. Any
// malformed line rejects the whole batch.
func ParseBatch(text string) ([]Command, error) {
	var cmds []Command
	for i, line := range bySep(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			return nil, LineError{Line: i, Err: err}
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Target is anything commands can be applied to. Row and column are
// validated by the target.
type Target interface {
	Reveal(row, col int) (mines.MoveResult, error)
	ToggleFlag(row, col int) error
	Chord(row, col int) (mines.MoveResult, error)
	Forfeit()
	Reset() error
	Status() mines.Status
}

func Execute(t Target, cmd Command) (err error) {
	switch cmd.Name {
	case Noop:
	case Open:
		_, err = t.Reveal(cmd.Row, cmd.Col)
	case Flag:
		err = t.ToggleFlag(cmd.Row, cmd.Col)
	case Chord:
		_, err = t.Chord(cmd.Row, cmd.Col)
	case Forfeit:
		t.Forfeit()
	case New:
		err = t.Reset()
	default:
		err = ErrUnknownCommand
	}
	return
}

// Run executes commands in order and stops after the first one that ends
// the game. It returns how many commands were executed.
func Run(t Target, cmds []Command) (int, error) {
	for i, cmd := range cmds {
		if err := Execute(t, cmd); err != nil {
			return i, fmt.Errorf("command %q: %w", cmd, err)
		}
		if t.Status().Terminal() {
			return i + 1, nil
		}
	}
	return len(cmds), nil
}
