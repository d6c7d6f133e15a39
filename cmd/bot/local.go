package main

import (
	"context"
	"errors"
	"os"

	"github.com/coder/quartz"
	"github.com/iamasit07/connect4-bot/internal/domain"
	"github.com/iamasit07/connect4-bot/internal/local"
	"github.com/iamasit07/connect4-bot/internal/service/game"
	"github.com/rs/zerolog"
)

type LocalCmd struct {
	Game    string `default:"connect4" help:"Game to play (${games})"`
	Player1 string `default:"Player 1" help:"Name of the first player (X)"`
	Player2 string `default:"Player 2" help:"Name of the second player (O), who moves first"`
}

func (c *LocalCmd) Run() error {
	clock := quartz.NewReal()
	manager := game.NewManager(domain.DefaultRegistry(), clock, zerolog.Nop())
	dispatcher := game.NewDispatcher(manager, nil, clock, zerolog.Nop())

	_, err := local.New(dispatcher, os.Stdin, os.Stdout).Play(context.Background(), c.Game,
		game.Player{ID: "p1", Name: c.Player1},
		game.Player{ID: "p2", Name: c.Player2},
	)
	if errors.Is(err, local.ErrQuit) {
		return nil
	}
	return err
}
