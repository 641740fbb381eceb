package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-classic/internal/commands"
	"github.com/vancomm/minesweeper-classic/internal/mines"
)

// localGame is a game owned by the terminal. Reset deals a new board with
// the same params.
type localGame struct {
	*mines.Game
	rnd *rand.Rand
}

func newLocalGame(params mines.GameParams, rnd *rand.Rand) (*localGame, error) {
	game, err := mines.NewGame(params, rnd)
	if err != nil {
		return nil, err
	}
	return &localGame{Game: game, rnd: rnd}, nil
}

func (g *localGame) Reset() error {
	game, err := mines.NewGame(g.Params(), g.rnd)
	if err != nil {
		return err
	}
	g.Game = game
	return nil
}

const help = `commands:
  o R C   reveal row R, column C
  f R C   toggle flag
  c R C   chord
  r       give up
  n       new board
  g       show the board
`

// play reads one command per line until in is exhausted, printing the
// board after every command.
func play(in io.Reader, out io.Writer, game *localGame) error {
	fmt.Fprint(out, help)
	fmt.Fprint(out, game.Snapshot())

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd, err := commands.Parse(line)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			continue
		}

		before := game.Status()
		if err := commands.Execute(game, cmd); err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			continue
		}
		log.WithFields(logrus.Fields{
			"command": cmd.String(),
			"status":  game.Status().String(),
		}).Debug("command executed")

		if after := game.Status(); after != before && after.Terminal() {
			log.WithFields(logrus.Fields{
				"params": game.Params().Seed(),
				"status": after.String(),
			}).Info("game finished")
		}

		fmt.Fprint(out, game.Snapshot())
	}
	return scanner.Err()
}
