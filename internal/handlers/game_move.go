package handlers

import (
	"errors"
	"strings"
)

type GameMove uint8

const (
	Reveal GameMove = iota + 1
	Flag
	Chord
)

func (m GameMove) String() string {
	switch m {
	case Reveal:
		return "reveal"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	default:
		return "unknown"
	}
}

var ErrBadMove = errors.New("move must be one of 'reveal', 'flag', 'chord'")

// ParseGameMove accepts "open" as an alias of "reveal".
func ParseGameMove(s string) (move GameMove, err error) {
	switch strings.ToLower(s) {
	case "reveal", "open":
		move = Reveal
	case "flag":
		move = Flag
	case "chord":
		move = Chord
	default:
		err = ErrBadMove
	}
	return
}
